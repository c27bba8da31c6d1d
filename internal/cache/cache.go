package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache stores serialized analysis responses so repeated requests for the
// same article do not hit the model backends again.
type Cache interface {
	// Get returns the cached bytes for key, or nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// InvalidatePrefix removes every entry whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error

	// Close closes the cache connection
	Close() error
}

// Key joins namespace and parts into a cache key. Parts are hashed so
// article bodies can be used directly.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Load decodes the entry at key into dst. It reports false on a miss.
func Load(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	data, err := c.Get(ctx, key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

func hasNamespace(key, prefix string) bool {
	return strings.HasPrefix(key, prefix)
}
