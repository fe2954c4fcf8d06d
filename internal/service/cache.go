package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ledgerKeyPrefix   = "ledger:"
	overviewKeyPrefix = "overview:"
)

// ViewCache is a redis read-through cache for ledger and overview views.
// Cache failures are logged and treated as misses; redis being down never
// fails a request.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// GetJSON loads a cached view into dest, reporting whether it was a hit.
func (c *ViewCache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("cache decode %s: %v", key, err)
		return false
	}

	return true
}

// SetJSON stores a view with the configured TTL.
func (c *ViewCache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache encode %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

// Invalidate drops cached views after a write.
func (c *ViewCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache invalidate %v: %v", keys, err)
	}
}
