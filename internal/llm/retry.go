package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Provider with retry logic. Failures are returned as
// *RetryError so callers can attribute them to an attempt number.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, sleep: sleepCtx}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidRetried := false

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &RetryError{Attempts: attempt - 1, Err: joinCtxErr(err, lastErr)}
		}

		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !r.shouldRetry(err, &invalidRetried) {
			return nil, &RetryError{Attempts: attempt, Err: err}
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		if err := r.sleep(ctx, r.backoff(attempt-1, err)); err != nil {
			return nil, &RetryError{Attempts: attempt, Err: joinCtxErr(err, lastErr)}
		}
	}

	return nil, &RetryError{Attempts: r.config.MaxAttempts, Exhausted: true, Err: lastErr}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry reports whether err may succeed on another attempt. Rate
// limits, timeouts and unavailability retry; an invalid response gets one
// extra attempt; everything else is terminal.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	if IsCancellation(err) {
		return false
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	return IsTransient(err)
}

// backoff computes the wait before the attempt following retry number n.
func (r *RetryProvider) backoff(n int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(n))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func joinCtxErr(ctxErr, last error) error {
	if last == nil {
		return ctxErr
	}
	return fmt.Errorf("%w (last error: %v)", ctxErr, last)
}
