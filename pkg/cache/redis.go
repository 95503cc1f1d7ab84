package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	logger logger.ILogger
}

func NewRedisCache(client *redis.Client, log logger.ILogger) *RedisCache {
	return &RedisCache{client: client, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CacheRequests.WithLabelValues("redis", "error").Inc()
			c.logger.Warn("CACHE", "Redis get failed", map[string]interface{}{"key": key, "error": err.Error()})
			return false
		}
		metrics.CacheRequests.WithLabelValues("redis", "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheRequests.WithLabelValues("redis", "error").Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues("redis", "hit").Inc()
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("CACHE", "Redis set failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("CACHE", "Redis delete failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Backend() string {
	return "redis"
}
