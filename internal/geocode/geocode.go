package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"zeladoria/internal/cache"
)

// ErrNoResult is returned when the provider knows no address for a point.
var ErrNoResult = errors.New("geocode: no result")

// Reverser turns coordinates into a human readable address.
type Reverser interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Google calls the Geocoding API.
type Google struct {
	client   *maps.Client
	language string
}

type Option func(*googleOptions)

type googleOptions struct {
	baseURL  string
	language string
}

func WithBaseURL(url string) Option {
	return func(o *googleOptions) { o.baseURL = url }
}

func WithLanguage(lang string) Option {
	return func(o *googleOptions) { o.language = lang }
}

func NewGoogle(apiKey string, opts ...Option) (*Google, error) {
	if apiKey == "" {
		return nil, errors.New("geocode api key not configured")
	}
	o := googleOptions{language: "pt-BR"}
	for _, opt := range opts {
		opt(&o)
	}
	clientOpts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(o.baseURL))
	}
	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &Google{client: client, language: o.language}, nil
}

func (g *Google) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lng},
		Language: g.language,
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", ErrNoResult
	}
	formatted := strings.TrimSpace(results[0].FormattedAddress)
	if formatted == "" {
		return "", ErrNoResult
	}
	return formatted, nil
}

// Resolver replaces citizen location text with a geocoded address when
// one is available. A nil reverser disables geocoding.
type Resolver struct {
	reverser Reverser
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

func NewResolver(reverser Reverser, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{reverser: reverser, cache: c, ttl: ttl, logger: logger}
}

// Normalize never fails: any provider problem keeps the original text.
func (r *Resolver) Normalize(ctx context.Context, locationText string, lat, lng float64) string {
	if r == nil || r.reverser == nil {
		return locationText
	}
	key := cache.CoordinateKey(lat, lng)
	if r.cache != nil {
		if addr, ok := r.cache.Get(ctx, key); ok {
			return addr
		}
	}
	addr, err := r.reverser.Reverse(ctx, lat, lng)
	if err != nil {
		if !errors.Is(err, ErrNoResult) {
			r.logger.Warn("reverse geocode failed", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		}
		return locationText
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, addr, r.ttl); err != nil {
			r.logger.Debug("geocode cache write failed", zap.Error(err))
		}
	}
	return addr
}
