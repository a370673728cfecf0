package ratelimit

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_CapacityAndRefill(t *testing.T) {
	clk := newFakeClock()
	bucket := newTokenBucket(LimiterConfig{Capacity: 5, RatePS: 2}, clk.Now)

	for i := 0; i < 5; i++ {
		require.True(t, bucket.Allow(), "應該允許第 %d 次請求", i+1)
	}
	require.False(t, bucket.Allow(), "超過容量限制應該被拒絕")

	// 2 tokens/秒, 0.4 秒不足一個 token
	clk.Advance(400 * time.Millisecond)
	require.False(t, bucket.Allow())

	// 累計 0.5 秒補一個
	clk.Advance(100 * time.Millisecond)
	require.True(t, bucket.Allow())
	require.False(t, bucket.Allow())

	// 補充不超過容量
	clk.Advance(time.Hour)
	for i := 0; i < 5; i++ {
		require.True(t, bucket.Allow())
	}
	require.False(t, bucket.Allow())
}

func TestTokenBucket_Concurrent(t *testing.T) {
	bucket := newTokenBucket(LimiterConfig{Capacity: 100, RatePS: 1}, newFakeClock().Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if bucket.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 100, allowed)
}

func TestFixedWindow(t *testing.T) {
	clk := newFakeClock()
	w := newFixedWindow(LimiterConfig{Capacity: 3, Window: time.Second}, clk.Now)

	for i := 0; i < 3; i++ {
		require.True(t, w.Allow())
	}
	require.False(t, w.Allow())

	clk.Advance(time.Second)
	require.True(t, w.Allow(), "新的時間窗口應該允許請求")
}

func TestSlideWindow(t *testing.T) {
	clk := newFakeClock()
	w := newSlideWindow(LimiterConfig{Capacity: 2, Window: time.Second}, clk.Now)

	require.True(t, w.Allow())
	clk.Advance(600 * time.Millisecond)
	require.True(t, w.Allow())
	require.False(t, w.Allow())

	// 第一筆滑出窗口
	clk.Advance(500 * time.Millisecond)
	require.True(t, w.Allow())
	require.False(t, w.Allow())
}

func TestKeyedLimiter_SeparatesKeys(t *testing.T) {
	limiter, err := NewLimiter(AlgFixedWindow, LimiterConfig{Capacity: 1, Window: time.Minute}, nil)
	require.NoError(t, err)
	defer limiter.Stop()

	ctx := context.Background()
	require.True(t, limiter.Allow(ctx, "10.0.0.1"))
	require.False(t, limiter.Allow(ctx, "10.0.0.1"))
	require.True(t, limiter.Allow(ctx, "10.0.0.2"))
}

func TestKeyedLimiter_EvictIdle(t *testing.T) {
	k := newKeyedLimiter(func() bucket { return NewFixedWindow(LimiterConfig{Capacity: 1, Window: time.Hour}) }, time.Hour)
	defer k.Stop()

	ctx := context.Background()
	require.True(t, k.Allow(ctx, "a"))
	require.False(t, k.Allow(ctx, "a"))

	k.evictIdle(time.Now().Add(2 * time.Hour))
	require.True(t, k.Allow(ctx, "a"), "閒置清除後重新計算")
}

func TestNewLimiter(t *testing.T) {
	_, err := NewLimiter(AlgRedisTokenBucket, LimiterConfig{}, nil)
	require.ErrorIs(t, err, ErrRedisClientRequired)

	_, err = NewLimiter(Algorithm("leaky"), LimiterConfig{}, nil)
	require.Error(t, err)

	l, err := NewLimiter(AlgNone, LimiterConfig{}, nil)
	require.NoError(t, err)
	require.True(t, l.Allow(context.Background(), "x"))

	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	require.Equal(t, AlgNone, alg)
	_, err = ParseAlgorithm("bogus")
	require.Error(t, err)
}

func TestRsTokenBucket(t *testing.T) {
	if os.Getenv("STOREFRONT_INTEGRATION") == "" {
		t.Skip("set STOREFRONT_INTEGRATION to run redis integration tests")
	}
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", Password: "password", DB: 1})
	defer client.Close()
	ctx := context.Background()
	client.Del(ctx, "rate_limit:it-key")

	limiter := NewRsTokenBucket(client, LimiterConfig{Capacity: 3, RatePS: 1})
	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow(ctx, "it-key"))
	}
	require.False(t, limiter.Allow(ctx, "it-key"))

	time.Sleep(1100 * time.Millisecond)
	require.True(t, limiter.Allow(ctx, "it-key"))
}
