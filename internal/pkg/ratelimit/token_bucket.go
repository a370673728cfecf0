package ratelimit

import (
	"sync/atomic"
	"time"
)

// TokenBucket 在 Allow 時依經過時間補充 token, 不需要背景 goroutine
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	now          clock
}

func NewTokenBucket(config LimiterConfig) *TokenBucket {
	return newTokenBucket(config, time.Now)
}

func newTokenBucket(config LimiterConfig, now clock) *TokenBucket {
	t := &TokenBucket{LimiterConfig: config.withDefaults(), now: now}
	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(now().UnixNano())
	return t
}

func (t *TokenBucket) Allow() bool {
	t.refill(t.now().UnixNano())
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// lastRefilled 只前進補充 token 所對應的時間, 餘數留到下次
func (t *TokenBucket) refill(now int64) {
	nsPerToken := int64(time.Second) / int64(t.RatePS)
	for {
		last := t.lastRefilled.Load()
		tokensToAdd := (now - last) / nsPerToken
		if tokensToAdd <= 0 {
			return
		}
		if !t.lastRefilled.CompareAndSwap(last, last+tokensToAdd*nsPerToken) {
			continue
		}
		for {
			current := t.current.Load()
			newTokens := current + tokensToAdd
			if newTokens > int64(t.Capacity) {
				newTokens = int64(t.Capacity)
			}
			if t.current.CompareAndSwap(current, newTokens) {
				return
			}
		}
	}
}
