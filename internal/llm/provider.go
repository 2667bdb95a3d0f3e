// Package llm provides answer generation through an ordered chain of
// pluggable providers.
//
// Each provider attempt fails with a typed error: unavailable and timeout
// failures advance the chain to the next provider, an invalid request is
// terminal (retrying elsewhere cannot fix a malformed request). When every
// configured provider has failed the chain falls back to the deterministic
// mock responder, unless that is disabled in configuration.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates a provider could not serve the request
	// (network, auth, rate limit). The chain advances past it.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrTimeout indicates a provider did not answer in time. The chain
	// advances past it.
	ErrTimeout = errors.New("provider timeout")

	// ErrInvalidRequest indicates a malformed prompt or oversized
	// context. Terminal: no other provider can fix the request.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrNoProvider indicates every configured provider failed and the
	// mock fallback is disabled.
	ErrNoProvider = errors.New("no provider available")

	// ErrUnknownProvider indicates an unrecognized provider name in the
	// configured chain.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Request is the input to one generation call.
type Request struct {
	// System is the system prompt.
	System string

	// Context is the assembled documentation context.
	Context string

	// Query is the user's question.
	Query string

	// Temperature and MaxTokens tune generation; zero means provider
	// default.
	Temperature float32
	MaxTokens   int
}

// Response is a provider's completion.
type Response struct {
	Text  string
	Model string
}

// Provider is a single answer-generation backend. Implementations
// classify their failures into the package error taxonomy and hold no
// cross-request state.
type Provider interface {
	// Generate produces an answer for req.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier for observability.
	Name() string
}
