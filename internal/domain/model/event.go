package model

const EventOrderCreated = "order/created"

// OrderCreatedEvent 下單成功後送往外部事件消費者
type OrderCreatedEvent struct {
	EventID   string      `json:"event_id"`
	Name      string      `json:"name"`
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	AddressID string      `json:"address"`
	Items     []OrderItem `json:"items"`
	Amount    int64       `json:"amount"`
	Date      int64       `json:"date"` // unix milli
}
