package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when no cache is configured or Redis is unreachable; every lookup
// is a miss.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (c *NoOpCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *NoOpCache) InvalidatePrefix(context.Context, string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
