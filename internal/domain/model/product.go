package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	UserID        string          `gorm:"not null;type:varchar(128);index" json:"userId"` // seller
	Name          string          `gorm:"not null;type:varchar(255)" json:"name"`
	Description   string          `gorm:"not null;type:text" json:"description"`
	Price         decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	OfferPrice    decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"offerPrice"`
	Category      string          `gorm:"type:varchar(100)" json:"category"`
	Brand         string          `gorm:"type:varchar(100)" json:"brand"`
	Subcategory   string          `gorm:"type:varchar(100)" json:"subcategory"`
	Images        []string        `gorm:"serializer:json;type:jsonb;not null" json:"image"`
	Videos        []string        `gorm:"serializer:json;type:jsonb" json:"videos"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	BaseModel
}

// Matches 不分大小寫比對 name/category/brand/description/subcategory
func (p *Product) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Category, p.Brand, p.Description, p.Subcategory} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type ProductFilter struct {
	SellerID string
	Search   string
}

// StockChange 單一商品庫存異動
type StockChange struct {
	ProductID string
	Quantity  int
}
