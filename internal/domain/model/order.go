package model

import (
	"slices"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// amount 建立後不可變動
type Order struct {
	ID                 string        `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	UserID             string        `gorm:"not null;type:varchar(128);index" json:"userId"`
	Items              []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Amount             int64         `gorm:"not null" json:"amount"`
	AddressID          string        `gorm:"not null;type:varchar(64)" json:"address"`
	Status             OrderStatus   `gorm:"not null;type:varchar(20);default:'placed'" json:"status"`
	PaymentStatus      PaymentStatus `gorm:"not null;type:varchar(20);default:'pending'" json:"paymentStatus"`
	CancellationReason string        `gorm:"type:text" json:"cancellationReason,omitempty"`
	GatewayOrderID     string        `gorm:"type:varchar(64)" json:"razorpayOrderId,omitempty"`
	GatewayPaymentID   string        `gorm:"type:varchar(64)" json:"razorpayPaymentId,omitempty"`
	BaseModel
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	OrderID   string `gorm:"not null;type:varchar(64);index" json:"-"`
	ProductID string `gorm:"not null;type:varchar(64)" json:"product"`
	Quantity  int    `gorm:"not null" json:"quantity"`
}

// ContainsAny 訂單內是否有任一商品在集合內
func (o *Order) ContainsAny(productIDs map[string]struct{}) bool {
	for _, item := range o.Items {
		if _, ok := productIDs[item.ProductID]; ok {
			return true
		}
	}
	return false
}

// StockChanges 將訂單項目轉為庫存異動, 依商品ID排序
// 所有下單都以相同順序鎖定商品列, 避免交叉扣減時 deadlock
func (o *Order) StockChanges() []StockChange {
	changes := make([]StockChange, 0, len(o.Items))
	for _, item := range o.Items {
		changes = append(changes, StockChange{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	slices.SortFunc(changes, func(a, b StockChange) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return changes
}

// OrderStatusUpdate 賣家更新訂單, nil 表示不變更
type OrderStatusUpdate struct {
	Status             *OrderStatus
	PaymentStatus      *PaymentStatus
	CancellationReason *string
}

type PaymentUpdate struct {
	PaymentStatus    PaymentStatus
	GatewayPaymentID string
}

// OrderDetail 訂單附帶商品與地址資訊, 供查詢使用
type OrderDetail struct {
	Order
	Address  *Address
	Products map[string]*Product
}
