package cache

import (
	"context"
	"errors"
	"time"
)

// Layered checks the in-process tier before the shared one and promotes
// shared hits into memory.
type Layered struct {
	memory Cache
	shared Cache
}

func NewLayered(memory, shared Cache) *Layered {
	return &Layered{memory: memory, shared: shared}
}

func (l *Layered) Get(ctx context.Context, key string) (string, bool) {
	if val, ok := l.memory.Get(ctx, key); ok {
		return val, true
	}
	val, ok := l.shared.Get(ctx, key)
	if !ok {
		return "", false
	}
	_ = l.memory.Set(ctx, key, val, 0)
	return val, true
}

// Set always fills memory; a shared tier failure is reported but the
// memory entry stays.
func (l *Layered) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := l.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return l.shared.Set(ctx, key, value, ttl)
}

func (l *Layered) Ping(ctx context.Context) error {
	return l.shared.Ping(ctx)
}

func (l *Layered) Close() error {
	return errors.Join(l.memory.Close(), l.shared.Close())
}
