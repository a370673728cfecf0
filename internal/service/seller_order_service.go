package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type ISellerOrderService interface {
	ListSellerOrders(ctx context.Context, sellerID string) ([]model.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, sellerID string, orderID string, update model.OrderStatusUpdate) (*model.Order, error)
}

type SellerOrderService struct {
	productRepo repository.IProductRepository
	orderRepo   repository.IOrderRepository
	addressRepo repository.IAddressRepository
}

func NewSellerOrderService(store *repository.Store) *SellerOrderService {
	return &SellerOrderService{
		productRepo: store.Products,
		orderRepo:   store.Orders,
		addressRepo: store.Addresses,
	}
}

var _ ISellerOrderService = (*SellerOrderService)(nil)

func (s *SellerOrderService) sellerProductIDs(ctx context.Context, sellerID string) (map[string]struct{}, error) {
	products, err := s.productRepo.ListProducts(ctx, model.ProductFilter{SellerID: sellerID})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(products))
	for _, p := range products {
		ids[p.ID] = struct{}{}
	}
	return ids, nil
}

// ListSellerOrders 至少包含一個該賣家商品的訂單, 新到舊
func (s *SellerOrderService) ListSellerOrders(ctx context.Context, sellerID string) ([]model.OrderDetail, error) {
	ids, err := s.sellerProductIDs(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.OrderDetail{}, nil
	}

	orders, err := s.orderRepo.GetOrdersByProductIDs(ctx, keys(ids))
	if err != nil {
		return nil, err
	}
	return buildOrderDetails(ctx, s.productRepo, s.addressRepo, orders)
}

// UpdateOrderStatus 狀態可任意切換, 沒有轉換表
func (s *SellerOrderService) UpdateOrderStatus(ctx context.Context, sellerID string, orderID string, update model.OrderStatusUpdate) (*model.Order, error) {
	if orderID == "" {
		return nil, invalidData("order id is required")
	}
	if update.Status == nil && update.PaymentStatus == nil && update.CancellationReason == nil {
		return nil, invalidData("nothing to update")
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, invalidData("invalid order status %q", *update.Status)
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.IsValid() {
		return nil, invalidData("invalid payment status %q", *update.PaymentStatus)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}

	ids, err := s.sellerProductIDs(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !order.ContainsAny(ids) {
		return nil, fmt.Errorf("%w: order %s has none of the seller's products", ErrForbidden, orderID)
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, update)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	return updated, nil
}
