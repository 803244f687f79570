package cache

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Cache stores short string values such as resolved addresses.
// Lookups never fail: a broken backend behaves as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// CoordinateKey rounds to five decimals (about a metre) so repeated
// reports from the same spot share an entry.
func CoordinateKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:v1:%.5f,%.5f", round5(lat), round5(lng))
}

func round5(v float64) float64 {
	r := math.Round(v*1e5) / 1e5
	if r == 0 {
		return 0
	}
	return r
}
