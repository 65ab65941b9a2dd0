package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitProvider blocks each call on a token bucket shared by every
// goroutine using the provider.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a limiter allowing rps calls per second and
// bursts of up to burst. A non-positive rps disables limiting.
func WithRateLimit(p Provider, rps float64, burst int) Provider {
	if rps <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Wait fails early when the deadline can't accommodate the
		// reservation; treat that like any other rate limit.
		return nil, &ErrRateLimit{Err: err}
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
