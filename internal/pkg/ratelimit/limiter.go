package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ILimiter 以 key (例如 client IP) 分別限流, 使用完畢呼叫 Stop()
type ILimiter interface {
	Allow(ctx context.Context, key string) bool
	Stop()
}

var ErrRedisClientRequired = errors.New("redis client is required for redis token bucket")

type entry struct {
	bucket   bucket
	lastSeen atomic.Int64
}

// KeyedLimiter 每個 key 一個記憶體內 bucket, 背景定期清除閒置的 key
type KeyedLimiter struct {
	newBucket func() bucket
	buckets   sync.Map
	idleTTL   time.Duration
	cancel    chan struct{}
	once      sync.Once
}

func newKeyedLimiter(newBucket func() bucket, idleTTL time.Duration) *KeyedLimiter {
	k := &KeyedLimiter{
		newBucket: newBucket,
		idleTTL:   idleTTL,
		cancel:    make(chan struct{}),
	}
	go k.background()
	return k
}

func (k *KeyedLimiter) Allow(ctx context.Context, key string) bool {
	v, ok := k.buckets.Load(key)
	if !ok {
		v, _ = k.buckets.LoadOrStore(key, &entry{bucket: k.newBucket()})
	}
	e := v.(*entry)
	e.lastSeen.Store(time.Now().UnixNano())
	return e.bucket.Allow()
}

func (k *KeyedLimiter) background() {
	ticker := time.NewTicker(k.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-k.cancel:
			return
		case <-ticker.C:
			k.evictIdle(time.Now())
		}
	}
}

func (k *KeyedLimiter) evictIdle(now time.Time) {
	k.buckets.Range(func(key, value any) bool {
		if now.UnixNano()-value.(*entry).lastSeen.Load() > int64(k.idleTTL) {
			k.buckets.Delete(key)
		}
		return true
	})
}

func (k *KeyedLimiter) Stop() {
	k.once.Do(func() {
		close(k.cancel)
	})
}

type noopLimiter struct{}

func (noopLimiter) Allow(ctx context.Context, key string) bool { return true }
func (noopLimiter) Stop()                                      {}

// NewLimiter 依演算法建立限流器, redis token bucket 需要 client
func NewLimiter(alg Algorithm, config LimiterConfig, client redis.Scripter) (ILimiter, error) {
	config = config.withDefaults()
	idleTTL := 10 * time.Minute

	switch alg {
	case AlgTokenBucket:
		return newKeyedLimiter(func() bucket { return NewTokenBucket(config) }, idleTTL), nil
	case AlgFixedWindow:
		return newKeyedLimiter(func() bucket { return NewFixedWindow(config) }, idleTTL), nil
	case AlgSlideWindow:
		return newKeyedLimiter(func() bucket { return NewSlideWindow(config) }, idleTTL), nil
	case AlgRedisTokenBucket:
		if client == nil {
			return nil, ErrRedisClientRequired
		}
		return NewRsTokenBucket(client, config), nil
	case AlgNone:
		return noopLimiter{}, nil
	default:
		return nil, fmt.Errorf("invalid rate limit algorithm %q", alg)
	}
}
