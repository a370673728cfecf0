package ratelimit

import (
	"fmt"
	"time"
)

type Algorithm string

const (
	AlgTokenBucket      Algorithm = "token_bucket"
	AlgFixedWindow      Algorithm = "fixed_window"
	AlgSlideWindow      Algorithm = "slide_window"
	AlgRedisTokenBucket Algorithm = "redis_token_bucket"
	AlgNone             Algorithm = "none"
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgTokenBucket, AlgFixedWindow, AlgSlideWindow, AlgRedisTokenBucket, AlgNone:
		return a, nil
	case "":
		return AlgNone, nil
	default:
		return "", fmt.Errorf("invalid rate limit algorithm %q", s)
	}
}

type LimiterConfig struct {
	Capacity int
	RatePS   int           // tokens/秒, token bucket 使用
	Window   time.Duration // 窗口長度, fixed/slide window 使用
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 100,
		RatePS:   10,
		Window:   time.Second,
	}
}

func (l LimiterConfig) withDefaults() LimiterConfig {
	def := GetDefaultLimiterConfig()
	if l.Capacity <= 0 {
		l.Capacity = def.Capacity
	}
	if l.RatePS <= 0 {
		l.RatePS = def.RatePS
	}
	if l.Window <= 0 {
		l.Window = def.Window
	}
	return l
}

// bucket 單一 key 的限流狀態
type bucket interface {
	Allow() bool
}

type clock func() time.Time
