// Package cache is a best-effort key/value layer. Misses and backend failures
// look the same to callers; nothing here is needed for correctness.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Ping(ctx context.Context) error
	Backend() string
}

// Key joins parts into a namespaced key, hashing free text so keys stay short.
func Key(namespace string, parts ...string) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(strings.Join(parts, "|"))))
	return "astu:" + namespace + ":" + hex.EncodeToString(h.Sum(nil))[:20]
}
