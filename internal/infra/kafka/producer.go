package kafka

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -destination=mock/mock_producer.go -package=mock_kafka . Producer

type Producer interface {
	// Produce 同步發送, 會block到所有消息都寫入
	Produce(ctx context.Context, msgs []Message) error
	Close() error
}

// messageWriter kafka.Writer 中用到的部分
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaProducer struct {
	writer messageWriter
	cfg    *Config
	closed atomic.Bool
}

var _ Producer = (*kafkaProducer)(nil)

func NewProducer(cfg *Config) (Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     cfg.GetBalancer(),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.Timeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Async:        false,
		// 重試由 Produce 控制
		MaxAttempts: 1,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Str("topic", cfg.Topic).Msgf("kafka producer error: "+msg, args...)
		}),
		Compression: kafka.Snappy,
	}

	return newProducerWithWriter(writer, cfg), nil
}

func newProducerWithWriter(writer messageWriter, cfg *Config) *kafkaProducer {
	return &kafkaProducer{writer: writer, cfg: cfg}
}

func (p *kafkaProducer) Produce(ctx context.Context, msgs []Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	kafkaMsgs := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		kafkaMsgs[i] = msg.ToKafkaMessage()
	}

	var err error
	delay := p.cfg.RetryDelay
	for attempt := 0; attempt <= p.cfg.RetryLimit; attempt++ {
		if ctx.Err() != nil {
			return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
		}

		err = p.writer.WriteMessages(ctx, kafkaMsgs...)
		if err == nil {
			return nil
		}
		retryable := IsTemporaryError(err) || IsConnectionError(err)
		if !retryable || attempt == p.cfg.RetryLimit {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt+1).Str("topic", p.cfg.Topic).Msg("kafka produce retryable error, retrying")
		select {
		case <-ctx.Done():
			return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
		case <-time.After(delay):
		}
		if p.cfg.RetryFactor > 1 {
			delay *= time.Duration(p.cfg.RetryFactor)
		}
	}

	return NewKafkaError("Produce", p.cfg.Topic, err)
}

func (p *kafkaProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
