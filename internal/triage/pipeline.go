package triage

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 350 * time.Millisecond
)

// Generator is the text-generation capability the pipeline drives.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Pipeline classifies citizen reports. It holds only immutable settings, so a
// single Pipeline may serve any number of concurrent calls.
type Pipeline struct {
	gen         Generator
	baseDelay   time.Duration
	maxAttempts uint64
	logger      *zap.Logger
}

type Option func(*Pipeline)

// WithBaseDelay sets the delay before the first retry; later retries double it.
func WithBaseDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.baseDelay = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(gen Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:         gen,
		baseDelay:   DefaultBaseDelay,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provider names the generator behind this pipeline.
func (p *Pipeline) Provider() string {
	return p.gen.Name()
}

// ProcessCitizenRequest builds the prompt, calls the provider with bounded
// retry and validates the answer. Any failure is a *ClassificationError.
func (p *Pipeline) ProcessCitizenRequest(ctx context.Context, report Report) (Result, error) {
	prompt := BuildPrompt(report)

	raw, err := p.generateWithRetry(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	res, err := ParseResult(raw)
	if err != nil {
		ce := responseError(p.Provider(), err)
		p.logger.Warn("triage response rejected",
			zap.String("provider", ce.Provider),
			zap.String("detail", ce.Detail))
		return Result{}, ce
	}
	return res, nil
}

func (p *Pipeline) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var (
		raw      string
		attempts int
		lastErr  error
	)
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		out, err := p.gen.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			if IsRetryable(err) {
				p.logger.Debug("triage provider call failed, will retry",
					zap.String("provider", p.Provider()),
					zap.Int("attempt", attempts),
					zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		if lastErr == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			lastErr = err
		}
		ce := providerError(p.Provider(), lastErr)
		p.logger.Warn("triage provider call failed",
			zap.String("provider", ce.Provider),
			zap.Int("attempts", attempts),
			zap.Int("status", ce.HTTPStatus),
			zap.String("detail", ce.Detail))
		return "", ce
	}
	return raw, nil
}

// backoff is built per call: go-retry backoffs count attempts internally.
func (p *Pipeline) backoff() retry.Backoff {
	return retry.WithMaxRetries(p.maxAttempts-1, retry.NewExponential(p.baseDelay))
}
