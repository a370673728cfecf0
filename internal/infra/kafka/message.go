package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

type Header struct {
	Key   string
	Value []byte
}

// Message 相同 Key 會進入同一分區
type Message struct {
	Key     []byte
	Value   []byte
	Headers []Header
	Time    time.Time
}

func (m *Message) ToKafkaMessage() kafka.Message {
	headers := make([]kafka.Header, len(m.Headers))
	for i, h := range m.Headers {
		headers[i] = kafka.Header{Key: h.Key, Value: h.Value}
	}
	return kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
		Time:    m.Time,
	}
}
