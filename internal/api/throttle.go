package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// Throttle keeps one token bucket per client key. Every lookup pushes the
// bucket's expiry out again, so only clients idle for limiterIdleTTL start
// full again.
type Throttle struct {
	limit    rate.Limit
	burst    int
	limiters *gocache.Cache
	now      func() time.Time
}

// NewThrottle returns nil when perMinute is not positive, which disables
// throttling.
func NewThrottle(perMinute, burst int) *Throttle {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: gocache.New(limiterIdleTTL, limiterIdleTTL),
		now:      time.Now,
	}
}

// Allow takes a token for key. When none is available it reports how many
// whole seconds until one will be.
func (t *Throttle) Allow(key string) (bool, int) {
	if t == nil {
		return true, 0
	}
	now := t.now()
	res := t.limiter(key).ReserveN(now, 1)
	if !res.OK() {
		return false, 60
	}
	delay := res.DelayFrom(now)
	if delay <= 0 {
		return true, 0
	}
	res.CancelAt(now)
	retry := int(math.Ceil(delay.Seconds()))
	if retry < 1 {
		retry = 1
	}
	return false, retry
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	if v, ok := t.limiters.Get(key); ok {
		t.limiters.Set(key, v, gocache.DefaultExpiration)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(t.limit, t.burst)
	if err := t.limiters.Add(key, l, gocache.DefaultExpiration); err != nil {
		// Lost a race with another request for the same key.
		if v, ok := t.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if t == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := t.Allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "too many requests, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
