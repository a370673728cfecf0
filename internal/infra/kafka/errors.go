package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/segmentio/kafka-go"
)

var (
	ErrInvalidateParameter = errors.New("invalidate parameter")
	// ErrProducerClosed 生產者已關閉
	ErrProducerClosed = errors.New("producer is closed")
)

// KafkaError 代表 Kafka 操作錯誤
type KafkaError struct {
	Operation string
	Topic     string
	Err       error
}

func (e *KafkaError) Error() string {
	return fmt.Sprintf("kafka operation %s on topic %s failed: %v", e.Operation, e.Topic, e.Err)
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func NewKafkaError(operation, topic string, err error) error {
	return &KafkaError{
		Operation: operation,
		Topic:     topic,
		Err:       err,
	}
}

// anyOf 對 WriteErrors 逐筆判斷, 其餘錯誤直接判斷
// all 為 true 時每筆非 nil 錯誤都需符合
func anyOf(err error, all bool, match func(error) bool) bool {
	var writeErrs kafka.WriteErrors
	if !errors.As(err, &writeErrs) {
		return match(err)
	}
	found := false
	for _, e := range writeErrs {
		if e == nil {
			continue
		}
		if match(e) {
			found = true
		} else if all {
			return false
		}
	}
	return found
}

// IsConnectionError broker 連線失敗, writer 下次寫入會重新連線
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return anyOf(err, true, func(e error) bool {
		if errors.Is(e, syscall.ECONNREFUSED) || errors.Is(e, syscall.ECONNRESET) || errors.Is(e, syscall.EPIPE) {
			return true
		}
		var opErr *net.OpError
		var dnsErr *net.DNSError
		return errors.As(e, &opErr) || errors.As(e, &dnsErr)
	})
}

// IsTemporaryError broker 回報可重試的錯誤碼, 或 writer 寫入逾時
func IsTemporaryError(err error) bool {
	if err == nil || IsFatalError(err) {
		return false
	}
	return anyOf(err, true, func(e error) bool {
		var code kafka.Error
		if errors.As(e, &code) {
			return code.Temporary()
		}
		return errors.Is(e, context.DeadlineExceeded)
	})
}

// IsFatalError 權限或 topic 設定錯誤, 重試無效
func IsFatalError(err error) bool {
	if err == nil {
		return false
	}
	return anyOf(err, false, func(e error) bool {
		var code kafka.Error
		if !errors.As(e, &code) {
			return false
		}
		switch code {
		case kafka.TopicAuthorizationFailed,
			kafka.ClusterAuthorizationFailed,
			kafka.SASLAuthenticationFailed,
			kafka.InvalidTopic,
			kafka.MessageSizeTooLarge:
			return true
		}
		return false
	})
}
