package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var surchargeRate = decimal.RequireFromString(constants.OrderSurchargeRate)

const defaultEventTimeout = 10 * time.Second

//go:generate mockgen -destination=mock/mock_service.go -package=mock_service . IProductService,IOrderService,ISellerOrderService,IPaymentService,IUserService,IAddressService,ICartService

type IOrderService interface {
	PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]model.OrderDetail, error)
}

type OrderItemInput struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	AddressID string
	Items     []OrderItemInput
}

type OrderService struct {
	productRepo   repository.IProductRepository
	addressRepo   repository.IAddressRepository
	orderRepo     repository.IOrderRepository
	checkoutRepo  repository.ICheckoutRepository
	cartRepo      repository.ICartRepository
	eventProducer producer.IOrderEventProducer
	metrics       *metrics.Metrics
	eventTimeout  time.Duration
	wg            sync.WaitGroup
}

func NewOrderService(store *repository.Store, cartRepo repository.ICartRepository, eventProducer producer.IOrderEventProducer, m *metrics.Metrics) *OrderService {
	return &OrderService{
		productRepo:   store.Products,
		addressRepo:   store.Addresses,
		orderRepo:     store.Orders,
		checkoutRepo:  store.Checkout,
		cartRepo:      cartRepo,
		eventProducer: eventProducer,
		metrics:       m,
		eventTimeout:  defaultEventTimeout,
	}
}

var _ IOrderService = (*OrderService)(nil)

/*
下單流程:
檢查資料 => 檢查地址 => 載入商品並檢查庫存 => 計算金額
=> 條件式扣庫存並寫入訂單 (同一個 repository 呼叫) => 非同步送事件 => 清空購物車
*/
func (o *OrderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*model.Order, error) {
	if input.AddressID == "" {
		return nil, invalidData("address is required")
	}
	items, err := mergeItems(input.Items)
	if err != nil {
		return nil, err
	}

	address, err := o.addressRepo.GetAddressByID(ctx, input.AddressID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, repository.ErrAddressNotFound)
	}

	products, err := o.loadProducts(ctx, items)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		product := products[item.ProductID]
		if item.Quantity > product.StockQuantity {
			o.metrics.IncStockConflict()
			return nil, &StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.StockQuantity,
				Requested: item.Quantity,
			}
		}
	}

	order := &model.Order{
		UserID:        userID,
		Items:         items,
		Amount:        CalculateOrderAmount(items, products),
		AddressID:     input.AddressID,
		Status:        model.OrderStatusPlaced,
		PaymentStatus: model.PaymentStatusPending,
	}
	order.CreatedAt = time.Now().UTC()

	if err := o.checkoutRepo.PlaceOrder(ctx, order); err != nil {
		// 檢查後被其他請求搶先扣走
		if errors.Is(err, repository.ErrProductStockNotEnough) {
			o.metrics.IncStockConflict()
			return nil, fmt.Errorf("%w: %w", ErrInsufficientStock, err)
		}
		return nil, err
	}
	o.metrics.IncOrdersPlaced()

	o.publishOrderCreated(order)

	if err := o.cartRepo.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("order_id", order.ID).Msg("clear cart after order failed")
	}

	return order, nil
}

// publishOrderCreated 失敗只記錄, 不回滾訂單也不釋放庫存
func (o *OrderService) publishOrderCreated(order *model.Order) {
	evtOrder := *order
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), o.eventTimeout)
		defer cancel()

		if err := o.eventProducer.ProduceOrderCreated(ctx, &evtOrder); err != nil {
			o.metrics.IncEventPublishFailure()
			log.Error().Err(err).Str("order_id", evtOrder.ID).Msg("publish order created event failed")
		}
	}()
}

// Wait 等待尚未送出的事件
func (o *OrderService) Wait() {
	o.wg.Wait()
}

func (o *OrderService) loadProducts(ctx context.Context, items []model.OrderItem) (map[string]*model.Product, error) {
	loaded := make([]*model.Product, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			product, err := o.productRepo.GetProductByID(gctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return fmt.Errorf("%w: %w: %s", ErrNotFound, err, item.ProductID)
				}
				return err
			}
			loaded[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make(map[string]*model.Product, len(loaded))
	for _, p := range loaded {
		products[p.ID] = p
	}
	return products, nil
}

func (o *OrderService) ListUserOrders(ctx context.Context, userID string) ([]model.OrderDetail, error) {
	orders, err := o.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildOrderDetails(ctx, o.productRepo, o.addressRepo, orders)
}

// mergeItems 同一商品合併數量, 保留第一次出現的順序
func mergeItems(inputs []OrderItemInput) ([]model.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, invalidData("items is empty")
	}

	index := make(map[string]int, len(inputs))
	items := make([]model.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == "" || in.Quantity <= 0 {
			return nil, invalidData("item quantity must be positive")
		}
		if i, ok := index[in.ProductID]; ok {
			items[i].Quantity += in.Quantity
			continue
		}
		index[in.ProductID] = len(items)
		items = append(items, model.OrderItem{ProductID: in.ProductID, Quantity: in.Quantity})
	}
	return items, nil
}

// CalculateOrderAmount floor(Σ offerPrice × qty × 1.02)
func CalculateOrderAmount(items []model.OrderItem, products map[string]*model.Product) int64 {
	sum := decimal.Zero
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		sum = sum.Add(product.OfferPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.Mul(surchargeRate).Floor().IntPart()
}

// buildOrderDetails 以應用端 join 補上商品與地址
func buildOrderDetails(ctx context.Context, productRepo repository.IProductRepository, addressRepo repository.IAddressRepository, orders []model.Order) ([]model.OrderDetail, error) {
	if len(orders) == 0 {
		return []model.OrderDetail{}, nil
	}

	productSet := map[string]struct{}{}
	addressSet := map[string]struct{}{}
	for _, order := range orders {
		addressSet[order.AddressID] = struct{}{}
		for _, item := range order.Items {
			productSet[item.ProductID] = struct{}{}
		}
	}

	var (
		products  []model.Product
		addresses []model.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = productRepo.GetProductsByIDs(gctx, keys(productSet))
		return err
	})
	g.Go(func() error {
		var err error
		addresses, err = addressRepo.GetAddressesByIDs(gctx, keys(addressSet))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productMap := make(map[string]*model.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	addressMap := make(map[string]*model.Address, len(addresses))
	for i := range addresses {
		addressMap[addresses[i].ID] = &addresses[i]
	}

	details := make([]model.OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail := model.OrderDetail{
			Order:    order,
			Address:  addressMap[order.AddressID],
			Products: make(map[string]*model.Product, len(order.Items)),
		}
		for _, item := range order.Items {
			if p, ok := productMap[item.ProductID]; ok {
				detail.Products[item.ProductID] = p
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
