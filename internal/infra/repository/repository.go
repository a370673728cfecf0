package repository

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足, 條件式扣減未命中
	ErrProductStockNotEnough = errors.New("product stock not enough")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrAddressNotFound       = errors.New("address not found")
	// ErrInsufficientQuantity 購物車扣減後小於0
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

//go:generate mockgen -destination=mock/mock_repository.go -package=mock_repository . IProductRepository,IOrderRepository,ICheckoutRepository,IUserRepository,IAddressRepository,ICartRepository

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
	// 不存在的ID直接略過, 由呼叫端比對
	GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error)
	// 依建立時間新到舊
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	// UpdateProduct 只更新商品資料, 不寫入庫存
	UpdateProduct(ctx context.Context, product *model.Product) error
	// SetProductStock 賣家直接設定庫存
	SetProductStock(ctx context.Context, productID string, stock int) error
	DeleteProduct(ctx context.Context, productID string) error
}

type IOrderRepository interface {
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]model.Order, error)
	// 任一項目包含指定商品的訂單, 依建立時間新到舊
	GetOrdersByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, update model.OrderStatusUpdate) (*model.Order, error)
	UpdatePayment(ctx context.Context, orderID string, update model.PaymentUpdate) (*model.Order, error)
	SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error
}

type ICheckoutRepository interface {
	// PlaceOrder 對每個項目做 stock >= qty 的條件式扣減並寫入訂單
	// 任一項目未命中則回傳 ErrProductStockNotEnough, 不留下訂單也不留下扣減
	PlaceOrder(ctx context.Context, order *model.Order) error
}

type IUserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

type IAddressRepository interface {
	CreateAddress(ctx context.Context, address *model.Address) error
	GetAddressByID(ctx context.Context, addressID string) (*model.Address, error)
	GetAddressesByIDs(ctx context.Context, addressIDs []string) ([]model.Address, error)
	GetAddressesByUserID(ctx context.Context, userID string) ([]model.Address, error)
}

type ICartRepository interface {
	Get(ctx context.Context, userID string) (*model.Cart, error)
	Replace(ctx context.Context, cart *model.Cart) error
	// Delta 回傳異動後數量
	Delta(ctx context.Context, userID string, productID string, delta int) (int, error)
	Clear(ctx context.Context, userID string) error
}

// Store 依 driver 組出的一組 repository
type Store struct {
	Products  IProductRepository
	Orders    IOrderRepository
	Checkout  ICheckoutRepository
	Users     IUserRepository
	Addresses IAddressRepository
	closeFn   func() error
}

func NewStore(products IProductRepository, orders IOrderRepository, checkout ICheckoutRepository,
	users IUserRepository, addresses IAddressRepository, closeFn func() error) *Store {
	return &Store{
		Products:  products,
		Orders:    orders,
		Checkout:  checkout,
		Users:     users,
		Addresses: addresses,
		closeFn:   closeFn,
	}
}

func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
