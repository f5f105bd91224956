package redisx

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// Init connects the shared client. Safe to skip; callers fall back to
// the database when the cache is absent.
func Init(addr string) {
	rdb = redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable at %s, unread counts fall back to database: %v", addr, err)
		rdb = nil
	}
}

// GetCount returns a cached counter, with ok=false on miss or when the
// cache is not configured.
func GetCount(ctx context.Context, key string) (int, bool) {
	if rdb == nil {
		return 0, false
	}
	n, err := rdb.Get(ctx, key).Int()
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetCount caches a counter with a short TTL.
func SetCount(ctx context.Context, key string, n int, ttl time.Duration) {
	if rdb == nil {
		return
	}
	_ = rdb.Set(ctx, key, n, ttl).Err()
}

// Invalidate drops cached keys after a write that changes them.
func Invalidate(ctx context.Context, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	_ = rdb.Del(ctx, keys...).Err()
}
