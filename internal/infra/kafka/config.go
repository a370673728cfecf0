package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config 生產者設定
type Config struct {
	Brokers []string
	Topic   string

	RequiredAcks int
	BatchSize    int
	BatchTimeout time.Duration
	Timeout      time.Duration

	// 可重試錯誤的重試次數與間隔, 間隔依 RetryFactor 倍增
	RetryLimit  int
	RetryDelay  time.Duration
	RetryFactor int

	// 分區策略, 未設定時使用 LeastBytes
	Balancer kafka.Balancer
}

// GetBalancer 取得負載平衡器，如果沒有設定則使用預設的 LeastBytes
func (c *Config) GetBalancer() kafka.Balancer {
	if c.Balancer != nil {
		return c.Balancer
	}
	return &kafka.LeastBytes{}
}

func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.Join(ErrInvalidateParameter, errors.New("brokers is empty"))
	}
	if c.Topic == "" {
		return errors.Join(ErrInvalidateParameter, errors.New("topic is empty"))
	}
	if c.RetryLimit < 0 {
		return errors.Join(ErrInvalidateParameter, errors.New("retry limit must be >= 0"))
	}
	return nil
}

// DefaultConfig returns a Config with default settings
func DefaultConfig(brokers []string, topic string) *Config {
	return &Config{
		Brokers:      brokers,
		Topic:        topic,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Timeout:      5 * time.Second,
		RequiredAcks: -1, // 等待所有副本確認
		RetryLimit:   3,
		RetryDelay:   200 * time.Millisecond,
		RetryFactor:  2,
	}
}
