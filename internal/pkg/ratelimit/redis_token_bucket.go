package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	-- key 不存在時以滿桶初始化
	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	local elapsedSeconds = (now - lastRefill) / 1000000000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', currentTokens, 'last_refill', now)
	-- 閒置的 key 自動過期
	redis.call('EXPIRE', key, math.ceil(capacity / rate) + 60)
	return allowed
`)

// RsTokenBucket 多個實例共用的 token bucket
type RsTokenBucket struct {
	LimiterConfig
	client redis.Scripter
	prefix string
}

func NewRsTokenBucket(client redis.Scripter, config LimiterConfig) *RsTokenBucket {
	return &RsTokenBucket{
		LimiterConfig: config.withDefaults(),
		client:        client,
		prefix:        "rate_limit",
	}
}

// Allow redis 異常時放行, 限流不可成為單點故障
func (r *RsTokenBucket) Allow(ctx context.Context, key string) bool {
	result, err := tokenBucketScript.Run(
		ctx,
		r.client,
		[]string{fmt.Sprintf("%s:%s", r.prefix, key)},
		r.Capacity,
		r.RatePS,
		time.Now().UnixNano(),
	).Int64()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis rate limiter unavailable, allow request")
		return true
	}
	return result == 1
}

func (r *RsTokenBucket) Stop() {}
