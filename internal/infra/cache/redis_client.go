package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func NewRedisClient(address string, options ...Option) *redis.Client {
	opts := &redis.Options{
		Addr: address,
	}

	for _, option := range options {
		option(opts)
	}

	return redis.NewClient(opts)
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
		o.PoolSize = poolSize
	}
}

// WaitForConnection 以固定間隔重試 PING 直到成功或 ctx 結束
// 啟動時 redis 尚未就緒不會讓程式失敗, cache 失敗本來就會被容忍
func WaitForConnection(ctx context.Context, client *redis.Client, delay time.Duration, logger zerolog.Logger) error {
	for attempt := 1; ; attempt++ {
		err := client.Ping(ctx).Err()
		if err == nil {
			logger.Info().Int("attempt", attempt).Msg("redis connected")
			return nil
		}
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("redis connection failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
