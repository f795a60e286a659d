// Package cache wraps an optional redis client used to memoize analytics
// responses. A nil *Cache is valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache struct {
	client *redis.Client
}

// New connects to redis at addr. Returns nil (caching disabled) when addr is
// empty or the server is unreachable; analytics answers from the database
// either way.
func New(ctx context.Context, addr string) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return &Cache{client: client}
}

// Get unmarshals the cached value for key into dest, reporting whether a
// value was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores val under key for ttl. Failures are ignored; the cache is an
// optimization, not a source of truth.
func (c *Cache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, ttl)
}

// Invalidate drops keys, used after writes that change analytics inputs.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
