// Package retrieval implements the multi-round search protocol over a
// vector store.
//
// A single query is embedded once, then searched twice: a broad pass with
// a low score threshold (recall safety net) and a refined pass with a high
// threshold (precision). The passes are independent reads and run
// concurrently. Their union is deduplicated by chunk ID keeping the higher
// score, sorted by descending score with ID tiebreak, and truncated to the
// configured maximum.
//
// A single-threshold search either over-fetches noise or misses legitimate
// paraphrased matches; running both and merging keeps the refined pass's
// precision while the broad pass catches what it dropped.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/hulo-lang/hulomind/internal/embed"
	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/vectorstore"
)

// ErrEmptyQuery indicates a blank query string. Raised before any
// embedding or store call is issued.
var ErrEmptyQuery = errors.New("empty query")

// Default protocol parameters.
const (
	DefaultBroadTopK        = 20
	DefaultRefinedTopK      = 5
	DefaultBroadThreshold   = 0.3
	DefaultRefinedThreshold = 0.7
	DefaultMaxResults       = 5
)

// Config tunes the multi-round protocol. Zero values fall back to the
// package defaults.
type Config struct {
	BroadTopK        int
	RefinedTopK      int
	BroadThreshold   float32
	RefinedThreshold float32
	MaxResults       int
}

func (c Config) withDefaults() Config {
	if c.BroadTopK <= 0 {
		c.BroadTopK = DefaultBroadTopK
	}
	if c.RefinedTopK <= 0 {
		c.RefinedTopK = DefaultRefinedTopK
	}
	if c.BroadThreshold == 0 {
		c.BroadThreshold = DefaultBroadThreshold
	}
	if c.RefinedThreshold == 0 {
		c.RefinedThreshold = DefaultRefinedThreshold
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

// Result is the ordered, deduplicated outcome of one multi-round search,
// with provenance describing how it was produced. No two hits share a
// chunk ID.
type Result struct {
	Hits []vectorstore.Hit

	// Rounds is the number of passes that contributed at least one hit.
	Rounds int

	// BroadThreshold and RefinedThreshold record the thresholds used.
	BroadThreshold   float32
	RefinedThreshold float32
}

// Empty reports whether no chunk matched in either pass.
func (r *Result) Empty() bool { return len(r.Hits) == 0 }

// Engine executes the multi-round protocol. It only reads from the store,
// never mutates it. Safe for concurrent use across queries; each call is
// an independent pipeline.
type Engine struct {
	store    vectorstore.Store
	embedder embed.Embedder
	cfg      Config
	logger   log.Logger
}

// New creates an Engine. The embedder must be the same model used at
// ingestion time; the engine verifies this per hit via the chunk's model
// tag rather than trusting the deployment to line up.
func New(store vectorstore.Store, embedder embed.Embedder, cfg Config, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Search runs the protocol for query. Zero hits in both passes is a
// normal outcome and returns an empty Result, not an error.
func (e *Engine) Search(ctx context.Context, query string) (*Result, error) {
	ctx, span := otel.Tracer("hulomind/retrieval").Start(ctx, "retrieval.Search")
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	// Embed the query once; both passes share the vector.
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Broad and refined passes are independent reads; run them
	// concurrently and fail the whole search if either fails.
	var broad, refined []vectorstore.Hit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := e.store.Search(gctx, vector, e.cfg.BroadTopK, e.cfg.BroadThreshold)
		if err != nil {
			return fmt.Errorf("broad pass: %w", err)
		}
		broad = hits
		return nil
	})
	g.Go(func() error {
		hits, err := e.store.Search(gctx, vector, e.cfg.RefinedTopK, e.cfg.RefinedThreshold)
		if err != nil {
			return fmt.Errorf("refined pass: %w", err)
		}
		refined = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := e.merge(broad, refined)
	if err != nil {
		return nil, err
	}

	rounds := 0
	if len(broad) > 0 {
		rounds++
	}
	if len(refined) > 0 {
		rounds++
	}

	if len(merged) > e.cfg.MaxResults {
		merged = merged[:e.cfg.MaxResults]
	}

	span.SetAttributes(
		attribute.Int("retrieval.broad_hits", len(broad)),
		attribute.Int("retrieval.refined_hits", len(refined)),
		attribute.Int("retrieval.result_hits", len(merged)),
	)
	e.logger.Debug("multi-round search",
		"broad", len(broad), "refined", len(refined), "merged", len(merged))

	return &Result{
		Hits:             merged,
		Rounds:           rounds,
		BroadThreshold:   e.cfg.BroadThreshold,
		RefinedThreshold: e.cfg.RefinedThreshold,
	}, nil
}

// merge unions the passes, deduplicates by chunk ID keeping the higher
// score, and sorts by descending score with ID tiebreak. It also rejects
// any hit embedded with a different model than the engine's embedder:
// comparing vectors across models silently returns plausible-looking
// nonsense, so the mismatch is an error, never a warning.
func (e *Engine) merge(passes ...[]vectorstore.Hit) ([]vectorstore.Hit, error) {
	model := e.embedder.Model()
	best := make(map[string]vectorstore.Hit)

	for _, pass := range passes {
		for _, h := range pass {
			if h.Chunk.EmbedModel != "" && h.Chunk.EmbedModel != model {
				return nil, fmt.Errorf("%w: chunk %s embedded with %q, query with %q",
					embed.ErrModelMismatch, h.Chunk.ID, h.Chunk.EmbedModel, model)
			}
			if prev, ok := best[h.Chunk.ID]; !ok || h.Score > prev.Score {
				best[h.Chunk.ID] = h
			}
		}
	}

	merged := make([]vectorstore.Hit, 0, len(best))
	for _, h := range best {
		merged = append(merged, h)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Chunk.ID < merged[j].Chunk.ID
	})
	return merged, nil
}
