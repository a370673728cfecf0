package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

const DefaultCurrency = "INR"

var ErrGatewayResponse = errors.New("unexpected payment gateway response")

//go:generate mockgen -destination=mock/mock_payment.go -package=mock_payment . IPaymentGateway

type IPaymentGateway interface {
	// CreateOrder amount 為最小貨幣單位
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*GatewayOrder, error)
	VerifySignature(gatewayOrderID string, gatewayPaymentID string, signature string) bool
	KeyID() string
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// orderCreator razorpay client.Order 中用到的部分
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders    orderCreator
	keyID     string
	keySecret string
}

func NewRazorpayGateway(keyID string, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, keyID: keyID, keySecret: keySecret}
}

var _ IPaymentGateway = (*RazorpayGateway)(nil)

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*GatewayOrder, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	resp, err := g.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}

	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrGatewayResponse)
	}
	order := &GatewayOrder{ID: id, Amount: amount, Currency: currency}
	// razorpay 回傳 json number
	if v, ok := resp["amount"].(float64); ok {
		order.Amount = int64(v)
	}
	if v, ok := resp["currency"].(string); ok && v != "" {
		order.Currency = v
	}
	return order, nil
}

// VerifySignature hex(HMAC-SHA256(secret, "<orderId>|<paymentId>")) 常數時間比對
func (g *RazorpayGateway) VerifySignature(gatewayOrderID string, gatewayPaymentID string, signature string) bool {
	return VerifySignature(g.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

func Sign(secret string, gatewayOrderID string, gatewayPaymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func VerifySignature(secret string, gatewayOrderID string, gatewayPaymentID string, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
