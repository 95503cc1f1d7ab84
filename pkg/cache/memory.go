package cache

import (
	"context"
	"encoding/json"
	"time"

	"astu-route-be/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache stores JSON encoded values so reads never alias cached state.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanup)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, found := c.store.Get(key)
	if !found {
		metrics.CacheRequests.WithLabelValues("memory", "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw.([]byte), dest); err != nil {
		metrics.CacheRequests.WithLabelValues("memory", "error").Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues("memory", "hit").Inc()
	return true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.store.Set(key, raw, ttl)
}

func (c *MemoryCache) Delete(ctx context.Context, key string) {
	c.store.Delete(key)
}

func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (c *MemoryCache) Backend() string {
	return "memory"
}
