package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hulo-lang/hulomind/internal/chunk"
)

// unitChunk builds a chunk whose embedding is a 3-dimensional unit vector.
func unitChunk(id string, x, y, z float32) chunk.Chunk {
	return chunk.Chunk{ID: id, Text: "text " + id, Embedding: []float32{x, y, z}}
}

func TestMemory_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	// Query along the x axis; scores decrease as vectors rotate away.
	err := m.Upsert(ctx, []chunk.Chunk{
		unitChunk("b", 0.6, 0.8, 0),
		unitChunk("a", 1, 0, 0),
		unitChunk("c", 0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := m.Search(ctx, []float32{1, 0, 0}, 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var got []string
	for _, h := range hits {
		got = append(got, h.Chunk.ID)
	}
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Search() order = %v, want %v", got, want)
	}

	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("Search() scores not non-increasing: %v then %v", hits[i-1].Score, hits[i].Score)
		}
	}
}

func TestMemory_SearchTiebreakByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	// Identical vectors score identically; ordering must fall back to ID.
	err := m.Upsert(ctx, []chunk.Chunk{
		unitChunk("z", 1, 0, 0),
		unitChunk("a", 1, 0, 0),
		unitChunk("m", 1, 0, 0),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := m.Search(ctx, []float32{1, 0, 0}, 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var got []string
	for _, h := range hits {
		got = append(got, h.Chunk.ID)
	}
	want := []string{"a", "m", "z"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Search() tie order = %v, want %v", got, want)
	}
}

func TestMemory_SearchThresholdAndTopK(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	err := m.Upsert(ctx, []chunk.Chunk{
		unitChunk("close", 1, 0, 0),
		unitChunk("mid", 0.6, 0.8, 0),
		unitChunk("far", 0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name     string
		topK     int
		minScore float32
		want     int
	}{
		{"all", 10, 0, 3},
		{"threshold drops far", 10, 0.5, 2},
		{"threshold drops mid", 10, 0.9, 1},
		{"topK truncates", 1, 0, 1},
		{"zero topK", 0, 0, 0},
		{"nothing above threshold", 10, 1.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := m.Search(ctx, []float32{1, 0, 0}, tt.topK, tt.minScore)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(hits) != tt.want {
				t.Errorf("Search(topK=%d, min=%v) = %d hits, want %d",
					tt.topK, tt.minScore, len(hits), tt.want)
			}
			for _, h := range hits {
				if h.Score < tt.minScore {
					t.Errorf("hit %s score %v below threshold %v", h.Chunk.ID, h.Score, tt.minScore)
				}
			}
		})
	}
}

func TestMemory_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	if err := m.Upsert(ctx, []chunk.Chunk{unitChunk("a", 1, 0, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	replacement := unitChunk("a", 0, 1, 0)
	replacement.Text = "replaced"
	if err := m.Upsert(ctx, []chunk.Chunk{replacement}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := m.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("Count() after replace = %d, want 1", count)
	}

	hits, err := m.Search(ctx, []float32{0, 1, 0}, 1, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.Text != "replaced" {
		t.Errorf("Search() after replace = %+v, want replaced chunk", hits)
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	err := m.Upsert(ctx, []chunk.Chunk{{ID: "bad", Embedding: []float32{1, 0}}})
	if !errors.Is(err, ErrDimension) {
		t.Errorf("Upsert() with short vector error = %v, want ErrDimension", err)
	}

	if err := m.Upsert(ctx, []chunk.Chunk{unitChunk("a", 1, 0, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	_, err = m.Search(ctx, []float32{1, 0}, 5, 0)
	if !errors.Is(err, ErrDimension) {
		t.Errorf("Search() with short vector error = %v, want ErrDimension", err)
	}
}

func TestMemory_DimensionFixedByFirstChunk(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	if err := m.Upsert(ctx, []chunk.Chunk{unitChunk("a", 1, 0, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	err := m.Upsert(ctx, []chunk.Chunk{{ID: "bad", Embedding: []float32{1, 0}}})
	if !errors.Is(err, ErrDimension) {
		t.Errorf("Upsert() after dimension fixed error = %v, want ErrDimension", err)
	}
}

func TestMemory_DeleteAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	if err := m.Upsert(ctx, []chunk.Chunk{unitChunk("a", 1, 0, 0), unitChunk("b", 0, 1, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := m.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	count, _ := m.Count(ctx)
	if count != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", count)
	}

	// Idempotent.
	if err := m.DeleteAll(ctx); err != nil {
		t.Errorf("DeleteAll() twice error = %v", err)
	}
}

func TestMemory_ConcurrentSearchAndUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	if err := m.Upsert(ctx, []chunk.Chunk{unitChunk("seed", 1, 0, 0)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := m.Search(ctx, []float32{1, 0, 0}, 5, 0); err != nil {
					t.Errorf("concurrent Search() error = %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 50 {
				c := unitChunk(fmt.Sprintf("w%d-%d", i, j), 0, 1, 0)
				if err := m.Upsert(ctx, []chunk.Chunk{c}); err != nil {
					t.Errorf("concurrent Upsert() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite clamped to zero", []float32{1, 0, 0}, []float32{-1, 0, 0}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
