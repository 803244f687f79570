package observability

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const alertEvery = 10

// TriageObserver logs every triage outcome and raises an alert line each
// time consecutive failures reach a multiple of ten.
type TriageObserver struct {
	logger *zap.Logger

	mu          sync.Mutex
	consecutive int64
	successes   int64
	failures    int64
}

func NewTriageObserver(logger *zap.Logger) *TriageObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageObserver{logger: logger.Named("triage")}
}

func (o *TriageObserver) RecordSuccess(provider, category, priority string, latency time.Duration) {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.consecutive = 0
	o.successes++
	o.mu.Unlock()

	o.logger.Info("triage succeeded",
		zap.String("provider", provider),
		zap.String("category", category),
		zap.String("priority", priority),
		zap.Duration("latency", latency))
}

func (o *TriageObserver) RecordFailure(provider string, status int, detail string, latency time.Duration) {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.consecutive++
	o.failures++
	count := o.consecutive
	o.mu.Unlock()

	o.logger.Warn("triage failed",
		zap.String("provider", provider),
		zap.Int("status", status),
		zap.String("detail", detail),
		zap.Duration("latency", latency),
		zap.Int64("consecutive_failures", count))

	if count%alertEvery == 0 {
		o.logger.Error("triage alert",
			zap.String("provider", provider),
			zap.Int64("consecutive_failures", count))
	}
}

// Snapshot returns lifetime success and failure counts.
func (o *TriageObserver) Snapshot() (successes, failures int64) {
	if o == nil {
		return 0, 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.successes, o.failures
}
