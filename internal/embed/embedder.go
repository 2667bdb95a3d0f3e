// Package embed defines the embedding provider abstraction and its
// implementations.
//
// An Embedder turns text into a fixed-dimension vector. The dimension and
// the model tag are fixed per instance; vectors are only comparable when
// produced by the same model, which is why every stored chunk carries the
// model tag and the retrieval engine checks it at query time.
package embed

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmbedding indicates the embedding backend failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrModelMismatch indicates a vector was produced by a different
	// model than the one configured for retrieval.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrUnknownProvider indicates an unrecognized embedder provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// Embedder produces embedding vectors for text.
//
// Implementations must be safe for concurrent use and must preserve input
// order in EmbedBatch.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	// Used at ingestion time for throughput.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the model identifier, used to tag stored chunks.
	Model() string

	// Dimension returns the fixed output vector length.
	Dimension() int
}

// Provider identifiers accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config selects and configures an embedder.
type Config struct {
	Provider  string // "gemini", "openai" or "mock"
	Model     string // model identifier, e.g. "gemini-embedding-001"
	Dimension int    // expected output dimension
}

// New builds an Embedder from config. Unknown providers fail fast with
// ErrUnknownProvider so misconfiguration surfaces at startup, not at the
// first query.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(ctx, cfg.Model, cfg.Dimension)
	case ProviderOpenAI:
		return NewOpenAI(cfg.Model, cfg.Dimension), nil
	case ProviderMock:
		return NewMock(cfg.Model, cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
