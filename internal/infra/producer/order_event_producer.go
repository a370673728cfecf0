package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
	"github.com/google/uuid"
)

const eventNameHeader = "event_name"

//go:generate mockgen -destination=mock/mock_order_event_producer.go -package=mock_producer . IOrderEventProducer

type IOrderEventProducer interface {
	ProduceOrderCreated(ctx context.Context, order *model.Order) error
}

// 以 userID 當 key, 同一買家的事件進同一分區
type OrderEventProducer struct {
	producer kafka.Producer
}

func NewOrderEventProducer(producer kafka.Producer) *OrderEventProducer {
	return &OrderEventProducer{producer: producer}
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)

func (o *OrderEventProducer) ProduceOrderCreated(ctx context.Context, order *model.Order) error {
	evt := model.OrderCreatedEvent{
		EventID:   uuid.New().String(),
		Name:      model.EventOrderCreated,
		OrderID:   order.ID,
		UserID:    order.UserID,
		AddressID: order.AddressID,
		Items:     order.Items,
		Amount:    order.Amount,
		Date:      order.CreatedAt.UnixMilli(),
	}

	msg, err := convertToMessage(order.UserID, evt.Name, evt)
	if err != nil {
		return err
	}
	return o.producer.Produce(ctx, []kafka.Message{msg})
}

func convertToMessage(key string, name string, evt any) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{
				Key:   eventNameHeader,
				Value: []byte(name),
			},
		},
		Time: time.Now().UTC(),
	}, nil
}

// NoopOrderEventProducer 未設定 kafka 時使用
type NoopOrderEventProducer struct{}

func (NoopOrderEventProducer) ProduceOrderCreated(ctx context.Context, order *model.Order) error {
	return nil
}
