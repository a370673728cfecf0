package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"gorm.io/gorm"
)

// 訂單建立走 CheckoutRepo, 這裡只負責查詢與狀態異動
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

var _ repository.IOrderRepository = (*OrderRepo)(nil)

func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) GetOrdersByProductIDs(ctx context.Context, productIDs []string) ([]model.Order, error) {
	var orders []model.Order
	if len(productIDs) == 0 {
		return orders, nil
	}
	sub := s.db.Model(&model.OrderItem{}).Select("order_id").Where("product_id IN ?", productIDs)
	err := s.db.WithContext(ctx).Preload("Items").
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Update - 更新訂單狀態, 沒有狀態轉移限制
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, update model.OrderStatusUpdate) (*model.Order, error) {
	updates := map[string]interface{}{}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.PaymentStatus != nil {
		updates["payment_status"] = *update.PaymentStatus
	}
	if update.CancellationReason != nil {
		updates["cancellation_reason"] = *update.CancellationReason
	}
	return s.updateAndReload(ctx, orderID, updates)
}

func (s *OrderRepo) UpdatePayment(ctx context.Context, orderID string, update model.PaymentUpdate) (*model.Order, error) {
	updates := map[string]interface{}{
		"payment_status": update.PaymentStatus,
	}
	if update.GatewayPaymentID != "" {
		updates["gateway_payment_id"] = update.GatewayPaymentID
	}
	return s.updateAndReload(ctx, orderID, updates)
}

func (s *OrderRepo) SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_id", gatewayOrderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}

func (s *OrderRepo) updateAndReload(ctx context.Context, orderID string, updates map[string]interface{}) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return repository.ErrOrderNotFound
			}
		}
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrOrderNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
