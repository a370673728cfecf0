package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductMatches(t *testing.T) {
	p := &Product{Name: "Running Shoe", Category: "Footwear", Brand: "Acme", Description: "light", Subcategory: "Sports"}

	testCases := []struct {
		name   string
		term   string
		expect bool
	}{
		{name: "empty term", term: "  ", expect: true},
		{name: "name case insensitive", term: "running", expect: true},
		{name: "brand", term: "ACME", expect: true},
		{name: "subcategory substring", term: "port", expect: true},
		{name: "no match", term: "laptop", expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, p.Matches(tc.term))
		})
	}
}

func TestStatusValidation(t *testing.T) {
	require.True(t, OrderStatusPlaced.IsValid())
	require.True(t, OrderStatusCancelled.IsValid())
	require.False(t, OrderStatus("Order Placed").IsValid())
	require.True(t, PaymentStatusPaid.IsValid())
	require.False(t, PaymentStatus("refunded").IsValid())
}

func TestOrderContainsAny(t *testing.T) {
	order := &Order{Items: []OrderItem{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}}

	require.True(t, order.ContainsAny(map[string]struct{}{"b": {}}))
	require.False(t, order.ContainsAny(map[string]struct{}{"c": {}}))
}

func TestStockChangesSortedByProduct(t *testing.T) {
	first := &Order{Items: []OrderItem{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}}
	second := &Order{Items: []OrderItem{{ProductID: "b", Quantity: 2}, {ProductID: "a", Quantity: 1}}}

	expect := []StockChange{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}
	require.Equal(t, expect, first.StockChanges())
	require.Equal(t, expect, second.StockChanges())
	// 不改動訂單項目原本的順序
	require.Equal(t, "b", second.Items[0].ProductID)
}

func TestCartIsEmpty(t *testing.T) {
	cart := NewCart("u1")
	require.True(t, cart.IsEmpty())
	cart.Items["p"] = 0
	require.True(t, cart.IsEmpty())
	cart.Items["q"] = 3
	require.False(t, cart.IsEmpty())
}
