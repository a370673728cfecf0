package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/payment"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/rs/zerolog/log"
)

type IPaymentService interface {
	CreateGatewayOrder(ctx context.Context, userID string, orderID string) (*GatewayOrderResult, error)
	VerifyPayment(ctx context.Context, userID string, input VerifyPaymentInput) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, userID string, input UpdatePaymentInput) (*model.Order, error)
}

type GatewayOrderResult struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"razorpayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

type VerifyPaymentInput struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type UpdatePaymentInput struct {
	OrderID          string
	PaymentStatus    model.PaymentStatus
	GatewayPaymentID string
}

type PaymentService struct {
	orderRepo repository.IOrderRepository
	gateway   payment.IPaymentGateway
	currency  string
}

// gateway 可為 nil, 此時建立遠端訂單與驗證皆回傳 ErrServiceUnavailable
func NewPaymentService(orderRepo repository.IOrderRepository, gateway payment.IPaymentGateway, currency string) *PaymentService {
	if currency == "" {
		currency = payment.DefaultCurrency
	}
	return &PaymentService{orderRepo: orderRepo, gateway: gateway, currency: currency}
}

var _ IPaymentService = (*PaymentService)(nil)

// buyerOrder 只有下單的買家可以操作
func (p *PaymentService) buyerOrder(ctx context.Context, userID string, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, invalidData("order id is required")
	}
	order, err := p.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s belongs to another buyer", ErrForbidden, orderID)
	}
	return order, nil
}

// CreateGatewayOrder 金額轉為最小貨幣單位 (×100)
func (p *PaymentService) CreateGatewayOrder(ctx context.Context, userID string, orderID string) (*GatewayOrderResult, error) {
	if p.gateway == nil {
		return nil, fmt.Errorf("%w: payment gateway", ErrServiceUnavailable)
	}
	order, err := p.buyerOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	gatewayOrder, err := p.gateway.CreateOrder(ctx, order.Amount*100, p.currency, "receipt_"+order.ID)
	if err != nil {
		return nil, err
	}
	if err := p.orderRepo.SetGatewayOrderID(ctx, order.ID, gatewayOrder.ID); err != nil {
		return nil, err
	}

	return &GatewayOrderResult{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         gatewayOrder.Amount,
		Currency:       gatewayOrder.Currency,
		KeyID:          p.gateway.KeyID(),
	}, nil
}

// VerifyPayment 簽章正確才標記 paid, 失敗不改任何資料
func (p *PaymentService) VerifyPayment(ctx context.Context, userID string, input VerifyPaymentInput) (*model.Order, error) {
	if p.gateway == nil {
		return nil, fmt.Errorf("%w: payment gateway", ErrServiceUnavailable)
	}
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, invalidData("payment details are required")
	}
	order, err := p.buyerOrder(ctx, userID, input.OrderID)
	if err != nil {
		return nil, err
	}

	// 簽章只綁定 gateway 訂單, 必須是這張訂單建立過的 gateway 訂單
	if order.GatewayOrderID == "" || order.GatewayOrderID != input.GatewayOrderID {
		log.Warn().Str("order_id", order.ID).Str("gateway_order_id", input.GatewayOrderID).Msg("gateway order id mismatch")
		return nil, ErrPaymentVerification
	}
	if !p.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		log.Warn().Str("order_id", order.ID).Msg("payment signature mismatch")
		return nil, ErrPaymentVerification
	}

	return p.orderRepo.UpdatePayment(ctx, order.ID, model.PaymentUpdate{
		PaymentStatus:    model.PaymentStatusPaid,
		GatewayPaymentID: input.GatewayPaymentID,
	})
}

// UpdatePaymentStatus 買家只能設定 pending 或 failed, paid 只能經由驗證
func (p *PaymentService) UpdatePaymentStatus(ctx context.Context, userID string, input UpdatePaymentInput) (*model.Order, error) {
	switch input.PaymentStatus {
	case model.PaymentStatusPending, model.PaymentStatusFailed:
	default:
		return nil, invalidData("payment status %q not allowed", input.PaymentStatus)
	}

	order, err := p.buyerOrder(ctx, userID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, invalidData("order %s is already paid", order.ID)
	}

	return p.orderRepo.UpdatePayment(ctx, order.ID, model.PaymentUpdate{
		PaymentStatus:    input.PaymentStatus,
		GatewayPaymentID: input.GatewayPaymentID,
	})
}
