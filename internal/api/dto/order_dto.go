package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CreateOrderDTO struct {
	Address string                   `json:"address"`
	Items   []service.OrderItemInput `json:"items"`
}

// SellerOrderUpdateDTO 欄位為 nil 表示不變更
type SellerOrderUpdateDTO struct {
	OrderID            string               `json:"orderId"`
	Status             *model.OrderStatus   `json:"status"`
	PaymentStatus      *model.PaymentStatus `json:"paymentStatus"`
	CancellationReason *string              `json:"cancellationReason"`
}

type RazorpayOrderDTO struct {
	OrderID string `json:"orderId"`
}

type VerifyPaymentDTO struct {
	OrderID           string `json:"orderId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type UpdatePaymentDTO struct {
	OrderID           string              `json:"orderId"`
	PaymentStatus     model.PaymentStatus `json:"paymentStatus"`
	RazorpayPaymentID string              `json:"razorpayPaymentId"`
}

type OrderItemDTO struct {
	Product  any `json:"product"` // 商品已刪除時只回傳 id
	Quantity int `json:"quantity"`
}

type OrderDTO struct {
	ID                 string              `json:"_id"`
	UserID             string              `json:"userId"`
	Items              []OrderItemDTO      `json:"items"`
	Amount             int64               `json:"amount"`
	Address            any                 `json:"address"`
	Status             model.OrderStatus   `json:"status"`
	PaymentStatus      model.PaymentStatus `json:"paymentStatus"`
	CancellationReason string              `json:"cancellationReason,omitempty"`
	RazorpayOrderID    string              `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID  string              `json:"razorpayPaymentId,omitempty"`
	Date               time.Time           `json:"date"`
}

func ConvertOrderDetail(detail model.OrderDetail) OrderDTO {
	items := make([]OrderItemDTO, 0, len(detail.Items))
	for _, item := range detail.Items {
		var product any = item.ProductID
		if p, ok := detail.Products[item.ProductID]; ok {
			product = p
		}
		items = append(items, OrderItemDTO{Product: product, Quantity: item.Quantity})
	}

	var address any = detail.AddressID
	if detail.Address != nil {
		address = detail.Address
	}

	return OrderDTO{
		ID:                 detail.ID,
		UserID:             detail.UserID,
		Items:              items,
		Amount:             detail.Amount,
		Address:            address,
		Status:             detail.Status,
		PaymentStatus:      detail.PaymentStatus,
		CancellationReason: detail.CancellationReason,
		RazorpayOrderID:    detail.GatewayOrderID,
		RazorpayPaymentID:  detail.GatewayPaymentID,
		Date:               detail.CreatedAt,
	}
}

func ConvertOrderDetails(details []model.OrderDetail) []OrderDTO {
	out := make([]OrderDTO, 0, len(details))
	for _, d := range details {
		out = append(out, ConvertOrderDetail(d))
	}
	return out
}
