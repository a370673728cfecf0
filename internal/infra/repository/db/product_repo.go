package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

var _ repository.IProductRepository = (*ProductRepo)(nil)

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetProductsByIDs(ctx context.Context, productIDs []string) ([]model.Product, error) {
	var products []model.Product
	if len(productIDs) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error
	return products, err
}

// Read - 依賣家與關鍵字查詢
func (s *ProductRepo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var products []model.Product
	query := s.db.WithContext(ctx).Model(&model.Product{})

	if filter.SellerID != "" {
		query = query.Where("user_id = ?", filter.SellerID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		query = query.Where(
			"name ILIKE ? OR category ILIKE ? OR brand ILIKE ? OR description ILIKE ? OR subcategory ILIKE ?",
			like, like, like, like, like,
		)
	}

	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}

// escapeLike 關鍵字中的 % 與 _ 視為一般字元, postgres 預設跳脫字元為 \
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// Update - 覆蓋商品資料, 庫存只由下單扣減與 SetProductStock 異動
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	result := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", product.ID).
		Select("name", "description", "price", "offer_price", "category", "brand",
			"subcategory", "images", "videos", "updated_at").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (s *ProductRepo) SetProductStock(ctx context.Context, productID string, stock int) error {
	result := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).
		UpdateColumns(map[string]any{"stock_quantity": stock, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

// Delete - 硬刪除商品
func (s *ProductRepo) DeleteProduct(ctx context.Context, productID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", productID).Delete(&model.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}
