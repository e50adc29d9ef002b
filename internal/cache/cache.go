// internal/cache/cache.go
package cache

import (
    "context"
    "time"
)

type Cache interface {
    Get(ctx context.Context, key string) ([]byte, bool, error)
    Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
    Del(ctx context.Context, keys ...string) error

    Close() error
}
