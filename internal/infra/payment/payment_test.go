package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	gotData map[string]interface{}
	resp    map[string]interface{}
	err     error
}

func (f *fakeOrders) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	f.gotData = data
	return f.resp, f.err
}

func TestSignAndVerify(t *testing.T) {
	// echo -n "order_1|pay_1" | openssl dgst -sha256 -hmac "secret"
	sig := Sign("secret", "order_1", "pay_1")
	require.Len(t, sig, 64)

	require.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	require.False(t, VerifySignature("secret", "order_1", "pay_2", sig))
	require.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	require.False(t, VerifySignature("secret", "order_1", "pay_1", strings.ToUpper(sig)))
	require.False(t, VerifySignature("secret", "order_1", "pay_1", ""))
	require.False(t, VerifySignature("", "order_1", "pay_1", sig))
}

func TestCreateOrder(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{"id": "order_Rzp1", "amount": float64(25500), "currency": "INR"}}
	g := &RazorpayGateway{orders: orders, keyID: "rzp_test", keySecret: "s"}

	order, err := g.CreateOrder(context.Background(), 25500, "", "receipt_o1")
	require.NoError(t, err)
	require.Equal(t, "order_Rzp1", order.ID)
	require.Equal(t, int64(25500), order.Amount)
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, "receipt_o1", orders.gotData["receipt"])
	require.Equal(t, DefaultCurrency, orders.gotData["currency"])
	require.Equal(t, "rzp_test", g.KeyID())
}

func TestCreateOrder_Errors(t *testing.T) {
	g := &RazorpayGateway{orders: &fakeOrders{err: errors.New("bad request")}}
	_, err := g.CreateOrder(context.Background(), 100, "INR", "r")
	require.Error(t, err)

	g = &RazorpayGateway{orders: &fakeOrders{resp: map[string]interface{}{}}}
	_, err = g.CreateOrder(context.Background(), 100, "INR", "r")
	require.ErrorIs(t, err, ErrGatewayResponse)
}
