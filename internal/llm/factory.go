package llm

import (
	"context"
	"fmt"

	"github.com/hulo-lang/hulomind/internal/log"
)

// Provider identifiers accepted in the configured chain order.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// Config describes the provider chain.
type Config struct {
	// Providers lists backend names in fallback order.
	Providers []string

	// Per-provider model selection. Empty means the provider default.
	OpenAIModel string
	GeminiModel string
	OllamaHost  string
	OllamaModel string

	// Generation tuning shared by all providers.
	Temperature float32
	MaxTokens   int

	// MockFallback keeps the deterministic responder as the last resort.
	MockFallback bool

	// RequestsPerSecond rate-limits each hosted provider (0 = unlimited).
	RequestsPerSecond float64
	Burst             int
}

// NewChainFromConfig builds the provider chain from configuration.
// Unknown names fail fast with ErrUnknownProvider.
func NewChainFromConfig(ctx context.Context, cfg Config, logger log.Logger) (*Chain, error) {
	providers := make([]Provider, 0, len(cfg.Providers))

	for _, name := range cfg.Providers {
		var (
			p   Provider
			err error
		)
		switch name {
		case ProviderOpenAI:
			p = NewOpenAIProvider(cfg.OpenAIModel)
		case ProviderGemini:
			p, err = NewGeminiProvider(ctx, cfg.GeminiModel)
		case ProviderOllama:
			p = NewOllamaProvider(cfg.OllamaHost, cfg.OllamaModel)
		case ProviderMock:
			p = NewMockProvider()
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		if err != nil {
			return nil, fmt.Errorf("creating provider %s: %w", name, err)
		}

		// The mock never talks to a network; limiting it is pointless.
		if name != ProviderMock {
			p = NewRateLimited(p, cfg.RequestsPerSecond, cfg.Burst)
		}
		providers = append(providers, p)
	}

	return NewChain(providers, cfg.MockFallback, logger), nil
}
