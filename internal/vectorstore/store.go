// Package vectorstore provides chunk storage with similarity search.
//
// Two interchangeable variants implement the Store interface: an ephemeral
// in-memory store and a persistent PostgreSQL + pgvector store. A factory
// selects the variant from configuration; callers never depend on a
// concrete implementation.
//
// Determinism contract: Search returns hits ordered by descending score,
// with ties broken by ascending chunk ID, so identical corpora produce
// identical result orderings across both variants.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/log"
)

var (
	// ErrStorage indicates the backend is unreachable or rejected the
	// operation. Only the persistent variant produces it.
	ErrStorage = errors.New("vector store storage error")

	// ErrUnknownKind indicates an unrecognized store kind in configuration.
	ErrUnknownKind = errors.New("unknown vector store kind")

	// ErrDimension indicates a vector whose length does not match the
	// store's configured dimension.
	ErrDimension = errors.New("embedding dimension mismatch")
)

// Store kinds accepted by New.
const (
	KindMemory     = "memory"
	KindPersistent = "persistent"
)

// Hit is a single search result. Produced transiently by one Search call,
// never persisted.
type Hit struct {
	Chunk chunk.Chunk
	Score float32 // similarity in [0,1], higher is closer
}

// Store owns chunk storage and vectors. Implementations are safe for
// concurrent use; Upsert and DeleteAll are writer operations, Search is
// read-only.
type Store interface {
	// Upsert inserts or replaces chunks by ID.
	Upsert(ctx context.Context, chunks []chunk.Chunk) error

	// Search returns up to topK hits with score >= minScore, ordered by
	// descending score with chunk-ID tiebreak.
	Search(ctx context.Context, vector []float32, topK int, minScore float32) ([]Hit, error)

	// DeleteAll clears the store. Idempotent; used before re-ingestion.
	DeleteAll(ctx context.Context) error

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close()
}

// Config selects and configures a store variant.
type Config struct {
	// Kind is "memory" or "persistent".
	Kind string

	// DSN is the PostgreSQL connection string (persistent only).
	DSN string

	// Dimension is the expected embedding vector length.
	Dimension int
}

// New builds a Store from config. The persistent variant connects and runs
// pending migrations before returning; connection failure surfaces as
// ErrStorage. An unrecognized kind fails fast with ErrUnknownKind.
func New(ctx context.Context, cfg Config, logger log.Logger) (Store, error) {
	switch cfg.Kind {
	case KindMemory:
		return NewMemory(cfg.Dimension), nil
	case KindPersistent:
		return NewPG(ctx, cfg.DSN, cfg.Dimension, logger)
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)",
			ErrUnknownKind, cfg.Kind, KindMemory, KindPersistent)
	}
}
