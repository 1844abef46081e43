package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss key 或 hash field 不存在
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	// 基本操作
	// Ping 供 readiness 檢查使用
	Ping(ctx context.Context) (string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Hash 相關操作
	HGet(ctx context.Context, key string, field string) (string, error)
	// HSetWithTTL 寫入 field 並刷新整個 hash 的 TTL
	HSetWithTTL(ctx context.Context, key string, field string, value any, ttl time.Duration) error
}
