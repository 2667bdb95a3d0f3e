package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/hulo-lang/hulomind/internal/log"
)

// Answer is the chain's result: the response plus which provider served it
// and whether that provider was a fallback (anything other than the first
// configured provider, including the mock).
type Answer struct {
	Response *Response
	Provider string
	Fallback bool
}

// Chain walks an ordered list of providers until one succeeds.
//
// Chain holds no cross-query state; each Generate call's walk is
// independent, so it is safe for concurrent use.
type Chain struct {
	providers    []Provider
	mockFallback bool
	mock         Provider
	logger       log.Logger
}

// NewChain creates a chain over providers in the given order. When
// mockFallback is true, exhaustion falls through to mock instead of
// failing with ErrNoProvider.
func NewChain(providers []Provider, mockFallback bool, logger log.Logger) *Chain {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Chain{
		providers:    providers,
		mockFallback: mockFallback,
		mock:         NewMockProvider(),
		logger:       logger,
	}
}

// Generate attempts providers in order.
//
// Classification:
//   - ErrUnavailable, ErrTimeout: advance to the next provider.
//   - ErrInvalidRequest: terminal, surfaced immediately.
//   - context cancellation: terminal, the caller gave up.
//
// Any other provider error is treated as unavailable; being wrong about
// that costs one extra attempt, while treating it as terminal would lose
// the fallback guarantee.
func (c *Chain) Generate(ctx context.Context, req Request) (*Answer, error) {
	var lastErr error

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.Generate(ctx, req)
		if err == nil {
			c.logger.Debug("provider served response", "provider", p.Name(), "attempt", i+1)
			return &Answer{Response: resp, Provider: p.Name(), Fallback: i > 0}, nil
		}

		if errors.Is(err, ErrInvalidRequest) {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		c.logger.Warn("provider failed, advancing",
			"provider", p.Name(), "attempt", i+1, "error", err)
		lastErr = err
	}

	if c.mockFallback {
		// The caller's deadline can expire during the last provider's
		// attempt (surfacing as ErrTimeout). A caller that is gone must
		// get its context error, not a mock answer it will never read.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.mock.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("mock fallback: %w", err)
		}
		c.logger.Warn("all providers exhausted, served by mock fallback")
		return &Answer{Response: resp, Provider: c.mock.Name(), Fallback: true}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %d providers exhausted, last error: %v",
			ErrNoProvider, len(c.providers), lastErr)
	}
	return nil, fmt.Errorf("%w: no providers configured", ErrNoProvider)
}

// Providers returns the configured provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}
