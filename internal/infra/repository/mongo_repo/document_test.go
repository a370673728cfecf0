package mongo_repo

import (
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductDocRoundTripKeepsDecimal(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	product := &model.Product{
		ID:            "p1",
		UserID:        "seller-1",
		Name:          "Shoe",
		Price:         decimal.RequireFromString("199.99"),
		OfferPrice:    decimal.RequireFromString("149.50"),
		Images:        []string{"https://cdn.example.com/a.png"},
		StockQuantity: 4,
		BaseModel:     model.BaseModel{CreatedAt: now},
	}

	got := toProductDoc(product).toModel()
	require.True(t, product.Price.Equal(got.Price))
	require.True(t, product.OfferPrice.Equal(got.OfferPrice))
	require.Equal(t, product.StockQuantity, got.StockQuantity)
	require.Equal(t, now, got.CreatedAt)
}

func TestOrderDocCarriesItemsAndGatewayIDs(t *testing.T) {
	order := &model.Order{
		ID:             "o1",
		UserID:         "buyer-1",
		AddressID:      "addr-1",
		Amount:         255,
		Status:         model.OrderStatusPlaced,
		PaymentStatus:  model.PaymentStatusPending,
		GatewayOrderID: "order_abc",
		Items:          []model.OrderItem{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}},
	}

	doc := toOrderDoc(order)
	require.Equal(t, "addr-1", doc.Address)
	require.Equal(t, "order_abc", doc.RazorpayOrderID)
	require.Len(t, doc.Items, 2)

	got := doc.toModel()
	require.Equal(t, "o1", got.Items[0].OrderID)
	require.Equal(t, order.Status, got.Status)
	require.Equal(t, order.Amount, got.Amount)
}

func TestNewDocID(t *testing.T) {
	require.Equal(t, "keep", newDocID("keep"))
	require.Len(t, newDocID(""), 24)
}
