package cache

import (
	"context"
	"fmt"
	"time"
)

// Open returns a memory cache, layered over Redis when a URL is given.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (Cache, error) {
	memory := NewMemory(ttl, 10*time.Minute)
	if redisURL == "" {
		return memory, nil
	}
	shared, err := NewRedis(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if err := shared.Ping(ctx); err != nil {
		_ = shared.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewLayered(memory, shared), nil
}
