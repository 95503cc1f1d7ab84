package cache

import (
	"context"
	"time"

	"astu-route-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// New returns a Redis backed cache when redisURL is reachable and an
// in-process cache otherwise.
func New(ctx context.Context, redisURL string, log logger.ILogger) Cache {
	memory := NewMemoryCache(10*time.Minute, 15*time.Minute)
	if redisURL == "" {
		log.Info("CACHE", "REDIS_URL not set, using in-memory cache", nil)
		return memory
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("CACHE", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("CACHE", "Redis unreachable, using in-memory cache", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return memory
	}

	log.Info("CACHE", "Connected to Redis", map[string]interface{}{"addr": opt.Addr})
	return NewRedisCache(client, log)
}
