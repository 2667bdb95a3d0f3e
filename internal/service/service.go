// Package service orchestrates the knowledge base: retrieval, answer
// generation with citations, and corpus ingestion.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/docs"
	"github.com/hulo-lang/hulomind/internal/embed"
	"github.com/hulo-lang/hulomind/internal/llm"
	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/retrieval"
	"github.com/hulo-lang/hulomind/internal/vectorstore"
)

var (
	// ErrInvalidQuery indicates an empty or oversized query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIngestInProgress indicates another ingestion holds the service.
	ErrIngestInProgress = errors.New("ingestion already in progress")
)

const (
	// MaxQueryLength bounds user queries; anything longer is almost
	// certainly pasted content, not a question.
	MaxQueryLength = 2000

	// maxContextBytes caps the assembled documentation context so the
	// prompt stays inside every chain provider's input window.
	maxContextBytes = 12000

	// embedBatchSize is the number of chunks embedded per backend call.
	embedBatchSize = 64

	// NoContextAnswer is returned when retrieval finds nothing; no
	// LLM call is made in that case.
	NoContextAnswer = "I could not find relevant documentation for this question. " +
		"Try rephrasing it, or ask about a specific Hulo language feature."
)

// Answer is a generated response with provenance.
type Answer struct {
	Text      string        `json:"text"`
	Citations []chunk.Ref   `json:"citations"`
	Provider  string        `json:"provider"`
	Fallback  bool          `json:"fallback"`
	Elapsed   time.Duration `json:"elapsed"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Files   int           `json:"files"`
	Chunks  int           `json:"chunks"`
	Elapsed time.Duration `json:"elapsed"`
}

// Config carries generation tuning for the service.
type Config struct {
	Temperature float32
	MaxTokens   int
}

// Knowledge ties the store, retrieval engine, embedder and LLM chain into
// the operations the API, CLI and MCP surfaces expose.
type Knowledge struct {
	store    vectorstore.Store
	engine   *retrieval.Engine
	chain    *llm.Chain
	embedder embed.Embedder
	loader   *docs.Loader
	cfg      Config
	logger   log.Logger

	// ingestMu makes ingestion single-flight. Queries never take it;
	// the store stays readable while a re-ingest runs.
	ingestMu sync.Mutex
}

// NewKnowledge creates the knowledge service.
func NewKnowledge(
	store vectorstore.Store,
	engine *retrieval.Engine,
	chain *llm.Chain,
	embedder embed.Embedder,
	loader *docs.Loader,
	cfg Config,
	logger log.Logger,
) *Knowledge {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Knowledge{
		store:    store,
		engine:   engine,
		chain:    chain,
		embedder: embedder,
		loader:   loader,
		cfg:      cfg,
		logger:   logger.With("component", "knowledge"),
	}
}

// Search validates the query and runs multi-round retrieval.
func (k *Knowledge) Search(ctx context.Context, query string) (*retrieval.Result, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	return k.engine.Search(ctx, query)
}

// Ask answers a question from the documentation. Retrieval runs first;
// when it returns nothing the canned answer comes back without any LLM
// call. Citations list only the chunks that actually made it into the
// prompt context.
func (k *Knowledge) Ask(ctx context.Context, query string) (*Answer, error) {
	ctx, span := otel.Tracer("hulomind/service").Start(ctx, "knowledge.ask")
	defer span.End()

	start := time.Now()

	if err := validateQuery(query); err != nil {
		return nil, err
	}

	result, err := k.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	if result.Empty() {
		k.logger.Info("no documentation found for query", "query_len", len(query))
		span.SetAttributes(attribute.Bool("ask.no_context", true))
		return &Answer{
			Text:     NoContextAnswer,
			Provider: "none",
			Elapsed:  time.Since(start),
		}, nil
	}

	contextText, citations := buildContext(result.Hits)

	answer, err := k.chain.Generate(ctx, llm.Request{
		System:      llm.SystemPrompt,
		Context:     contextText,
		Query:       query,
		Temperature: k.cfg.Temperature,
		MaxTokens:   k.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	span.SetAttributes(
		attribute.String("ask.provider", answer.Provider),
		attribute.Bool("ask.fallback", answer.Fallback),
		attribute.Int("ask.citations", len(citations)),
	)
	k.logger.Info("answered question",
		"provider", answer.Provider,
		"fallback", answer.Fallback,
		"citations", len(citations),
		"elapsed", time.Since(start))

	return &Answer{
		Text:      answer.Response.Text,
		Citations: citations,
		Provider:  answer.Provider,
		Fallback:  answer.Fallback,
		Elapsed:   time.Since(start),
	}, nil
}

// Ingest wipes the store and re-ingests the docs tree at root. Only one
// ingestion may run at a time; a second call fails fast instead of
// queueing behind a long embed run.
func (k *Knowledge) Ingest(ctx context.Context, root string) (*IngestStats, error) {
	if !k.ingestMu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer k.ingestMu.Unlock()

	ctx, span := otel.Tracer("hulomind/service").Start(ctx, "knowledge.ingest",
		trace.WithAttributes(attribute.String("ingest.root", root)))
	defer span.End()

	start := time.Now()

	chunks, err := k.loader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading docs: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no markdown documents found under %s", root)
	}

	if err := k.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	// Wipe-and-replace keeps chunk IDs stable across runs and drops
	// chunks whose source files disappeared.
	if err := k.store.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clearing store: %w", err)
	}
	if err := k.store.Upsert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	files := countFiles(chunks)
	stats := &IngestStats{Files: files, Chunks: len(chunks), Elapsed: time.Since(start)}

	span.SetAttributes(attribute.Int("ingest.chunks", len(chunks)))
	k.logger.Info("ingestion complete",
		"files", files, "chunks", len(chunks), "elapsed", stats.Elapsed)
	return stats, nil
}

// Reset deletes every chunk from the store.
func (k *Knowledge) Reset(ctx context.Context) error {
	if !k.ingestMu.TryLock() {
		return ErrIngestInProgress
	}
	defer k.ingestMu.Unlock()

	if err := k.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	k.logger.Info("knowledge base reset")
	return nil
}

// Count reports how many chunks the store holds.
func (k *Knowledge) Count(ctx context.Context) (int, error) {
	return k.store.Count(ctx)
}

// embedChunks fills in embedding vectors batch by batch, tagging every
// chunk with the embedder's model so later queries can detect a mismatch.
func (k *Knowledge) embedChunks(ctx context.Context, chunks []chunk.Chunk) error {
	model := k.embedder.Model()
	for lo := 0; lo < len(chunks); lo += embedBatchSize {
		hi := min(lo+embedBatchSize, len(chunks))

		texts := make([]string, 0, hi-lo)
		for _, c := range chunks[lo:hi] {
			texts = append(texts, c.Text)
		}

		vectors, err := k.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", lo, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d texts", embed.ErrEmbedding, len(vectors), len(texts))
		}

		for i := range vectors {
			chunks[lo+i].Embedding = vectors[i]
			chunks[lo+i].EmbedModel = model
		}
		k.logger.Debug("embedded batch", "from", lo, "to", hi, "total", len(chunks))
	}
	return nil
}

// buildContext assembles the numbered documentation context handed to the
// LLM and the citation list matching it. Hits arrive sorted by relevance;
// lower-ranked hits that would push the context past the byte cap are
// dropped along with their citations.
func buildContext(hits []vectorstore.Hit) (string, []chunk.Ref) {
	var (
		b         strings.Builder
		citations []chunk.Ref
	)
	for _, h := range hits {
		header := h.Chunk.Title
		if h.Chunk.HeadingPath != "" && h.Chunk.HeadingPath != h.Chunk.Title {
			header += " / " + h.Chunk.HeadingPath
		}
		entry := fmt.Sprintf("[%d] %s (%s)\n%s\n\n",
			len(citations)+1, header, h.Chunk.Path, h.Chunk.Text)

		if b.Len() > 0 && b.Len()+len(entry) > maxContextBytes {
			break
		}
		b.WriteString(entry)
		citations = append(citations, chunk.RefOf(h.Chunk))
	}
	return strings.TrimRight(b.String(), "\n"), citations
}

func validateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("%w: query is empty", ErrInvalidQuery)
	}
	if len(trimmed) > MaxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters (got %d)",
			ErrInvalidQuery, MaxQueryLength, len(trimmed))
	}
	return nil
}

func countFiles(chunks []chunk.Chunk) int {
	seen := make(map[string]struct{})
	for _, c := range chunks {
		seen[c.Path] = struct{}{}
	}
	return len(seen)
}
