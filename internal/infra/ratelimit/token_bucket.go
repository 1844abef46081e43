package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type ILimiter interface {
	// Allow 取得一個 token, redis 失敗時回傳 error 由呼叫端決定放行與否
	Allow(ctx context.Context, key string) (bool, error)
}

type LimiterConfig struct {
	Prefix   string
	Capacity int
	RatePS   int // tokens/秒
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Prefix:   "ratelimit",
		Capacity: 20,
		RatePS:   5,
	}
}

// 所有時間以毫秒計算, 避免 lua number 精度問題
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	-- 取得或初始化 bucket 狀態
	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	-- 計算需要補充的 tokens
	local elapsed = math.max(0, now - lastRefill) / 1000
	currentTokens = math.min(capacity, currentTokens + elapsed * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tostring(currentTokens), 'last_refill', tostring(now))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RsTokenBucket redis token bucket, 多個 instance 共用同一份額度
type RsTokenBucket struct {
	LimiterConfig
	client redis.Scripter
	now    func() time.Time
}

func NewRsTokenBucket(client redis.Scripter, config *LimiterConfig) *RsTokenBucket {
	rb := &RsTokenBucket{
		client: client,
		now:    time.Now,
	}

	if config != nil {
		rb.LimiterConfig = *config
	} else {
		rb.LimiterConfig = GetDefaultLimiterConfig()
	}

	return rb
}

var _ ILimiter = (*RsTokenBucket)(nil)

func (r *RsTokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	// bucket 補滿所需時間之後即可過期
	ttl := 60
	if r.RatePS > 0 {
		ttl = r.Capacity/r.RatePS + 1
	}

	result, err := tokenBucketScript.Run(
		ctx,
		r.client,
		[]string{r.Prefix + ":" + key},
		r.Capacity,
		r.RatePS,
		r.now().UnixMilli(),
		ttl,
	).Int64()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}
