package db

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"gorm.io/gorm"
)

type CheckoutRepo struct {
	db *DbDao
}

func NewCheckoutRepo(db *DbDao) *CheckoutRepo {
	return &CheckoutRepo{db: db}
}

var _ repository.ICheckoutRepository = (*CheckoutRepo)(nil)

// PlaceOrder 扣庫存與寫入訂單在同一個交易內
// 扣庫存使用 stock_quantity >= ? 條件, 影響筆數為0即整筆rollback
func (s *CheckoutRepo) PlaceOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range order.StockChanges() {
			result := tx.Model(&model.Product{}).
				Where("id = ? AND stock_quantity >= ?", change.ProductID, change.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", change.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: product %s", repository.ErrProductStockNotEnough, change.ProductID)
			}
		}
		return tx.Create(order).Error
	})
}
