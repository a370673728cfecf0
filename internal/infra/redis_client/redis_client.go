package redis_client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	_instances = sync.Map{}
)

// GetRedisClient 同一個 address 共用同一個 client
func GetRedisClient(address string, options ...Option) (*redis.Client, error) {
	client, ok := _instances.Load(address)
	if !ok {
		var err error
		client, err = createRedisClient(address, options...)
		if err != nil {
			return nil, err
		}
		actual, _ := _instances.LoadOrStore(address, client)
		client = actual
	}

	return client.(*redis.Client), nil
}

func createRedisClient(address string, options ...Option) (*redis.Client, error) {
	opts := &redis.Options{
		Addr: address,
	}

	for _, option := range options {
		option(opts)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", address, err)
	}
	return client, nil
}

// CloseAll 關閉所有已建立的 client
func CloseAll() error {
	var firstErr error
	_instances.Range(func(key, value any) bool {
		if err := value.(*redis.Client).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		_instances.Delete(key)
		return true
	})
	return firstErr
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		if poolSize > 0 {
			o.PoolSize = poolSize
		}
	}
}
