package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = time.Minute

// Cache is a best-effort JSON cache on Redis. A nil client makes every call a miss or no-op.
type Cache struct {
	rc *redis.Client
}

func NewCache(rc *redis.Client) *Cache {
	return &Cache{rc: rc}
}

// Enabled reports whether a backing store is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.rc != nil
}

// GetJSON decodes the cached value at key into dst; false on miss or any error.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	rctx, cancel := redisCtx(ctx)
	defer cancel()
	b, err := c.rc.Get(rctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

// SetJSON marshals v and stores it with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	rctx, cancel := redisCtx(ctx)
	defer cancel()
	if err := c.rc.Set(rctx, key, b, ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Generation reads the counter at key; 0 when unset, disabled or unreadable.
// Dependent keys embed the generation so one INCR retires all of them.
func (c *Cache) Generation(ctx context.Context, key string) int64 {
	if !c.Enabled() {
		return 0
	}
	rctx, cancel := redisCtx(ctx)
	defer cancel()
	n, err := c.rc.Get(rctx, key).Int64()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("cache generation read failed key=%s err=%v", key, err)
		}
		return 0
	}
	return n
}

// BumpGeneration increments the counter at key and refreshes its ttl.
func (c *Cache) BumpGeneration(ctx context.Context, key string, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	rctx, cancel := redisCtx(ctx)
	defer cancel()
	pipe := c.rc.TxPipeline()
	pipe.Incr(rctx, key)
	pipe.Expire(rctx, key, ttl)
	if _, err := pipe.Exec(rctx); err != nil {
		Sugar.Warnf("cache generation bump failed key=%s err=%v", key, err)
	}
}
