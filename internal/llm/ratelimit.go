package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a provider with a token-bucket limiter so a burst of
// concurrent queries cannot blow through a hosted API's quota and turn
// every subsequent attempt into a rate-limit failure.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps inner with a limiter of rps requests per second
// and the given burst. rps <= 0 returns inner unchanged.
func NewRateLimited(inner Provider, rps float64, burst int) Provider {
	if rps <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate waits for limiter clearance, then delegates. A context
// cancelled while waiting surfaces as the context's error, matching the
// chain's terminal-cancellation handling.
func (r *RateLimited) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}

// Name returns the wrapped provider's name.
func (r *RateLimited) Name() string { return r.inner.Name() }
