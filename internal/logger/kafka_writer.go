package logger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
)

// KafkaWriter 把 zerolog 輸出送進 kafka, 以遞增的 log id 當 key 平均分配分區
type KafkaWriter struct {
	p     kafka.Producer
	logId atomic.Uint64
}

func NewKafkaWriter(p kafka.Producer) *KafkaWriter {
	return &KafkaWriter{p: p}
}

func (kw *KafkaWriter) Write(p []byte) (n int, err error) {
	if kw == nil || kw.p == nil {
		return 0, fmt.Errorf("kafka logger is not init")
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, kw.logId.Add(1))
	// zerolog 會重用 buffer
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := kw.p.Produce(ctx, []kafka.Message{{Key: key, Value: value}}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaWriter) Close() error {
	return kw.p.Close()
}
