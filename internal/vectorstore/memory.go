package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hulo-lang/hulomind/internal/chunk"
)

// Memory is the ephemeral in-memory store. All data is lost on process
// restart. It computes exact cosine similarity over every stored chunk,
// which is fine for a documentation corpus of a few thousand chunks.
//
// A RWMutex lets concurrent searches proceed in parallel while Upsert and
// DeleteAll take the write lock, so readers always see a consistent
// snapshot of the corpus.
type Memory struct {
	dimension int

	mu     sync.RWMutex
	chunks map[string]chunk.Chunk
}

// NewMemory creates an empty in-memory store. dimension 0 disables the
// vector length check (the first upserted chunk fixes it).
func NewMemory(dimension int) *Memory {
	return &Memory{
		dimension: dimension,
		chunks:    make(map[string]chunk.Chunk),
	}
}

// Upsert inserts or replaces chunks by ID.
func (m *Memory) Upsert(_ context.Context, chunks []chunk.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chunks {
		if m.dimension == 0 && len(c.Embedding) > 0 {
			m.dimension = len(c.Embedding)
		}
		if len(c.Embedding) != m.dimension {
			return errDimension(m.dimension, len(c.Embedding))
		}
		m.chunks[c.ID] = c
	}
	return nil
}

// Search scores every stored chunk against vector and returns the topK
// hits at or above minScore.
func (m *Memory) Search(_ context.Context, vector []float32, topK int, minScore float32) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 || len(m.chunks) == 0 {
		return nil, nil
	}
	if m.dimension != 0 && len(vector) != m.dimension {
		return nil, errDimension(m.dimension, len(vector))
	}

	hits := make([]Hit, 0, len(m.chunks))
	for _, c := range m.chunks {
		score := cosineSimilarity(vector, c.Embedding)
		if score >= minScore {
			hits = append(hits, Hit{Chunk: c, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteAll clears the store.
func (m *Memory) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[string]chunk.Chunk)
	return nil
}

// Count reports the number of stored chunks.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// Close is a no-op for the in-memory store.
func (*Memory) Close() {}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to [0,1]. Negative cosines (vectors pointing away from each
// other) carry no retrieval signal for this corpus and are floored at 0 so
// scores stay in the documented range.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case cos < 0:
		return 0
	case cos > 1:
		return 1
	default:
		return float32(cos)
	}
}

func errDimension(want, got int) error {
	return fmt.Errorf("%w: want %d, got %d", ErrDimension, want, got)
}
