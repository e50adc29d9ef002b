// internal/cache/redis_cache.go
package cache

import (
    "context"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

type RedisCache struct {
    c *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
    rdb := redis.NewClient(&redis.Options{
        Addr:     addr,
        Password: password,
        DB:       db,
    })
    return &RedisCache{c: rdb}
}

func (r *RedisCache) Close() error { return r.c.Close() }

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
    b, err := r.c.Get(ctx, key).Bytes()
    if err != nil {
        if errors.Is(err, redis.Nil) {
            return nil, false, nil
        }
        return nil, false, err
    }
    return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
    return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
    if len(keys) == 0 {
        return nil
    }
    return r.c.Del(ctx, keys...).Err()
}

var _ Cache = (*RedisCache)(nil)
