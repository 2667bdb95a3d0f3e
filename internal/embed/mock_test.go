package embed

import (
	"context"
	"math"
	"testing"
)

func TestMock_Deterministic(t *testing.T) {
	m := NewMock("", 768)
	ctx := context.Background()

	a, err := m.Embed(ctx, "while loops in Hulo")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := m.Embed(ctx, "while loops in Hulo")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != 768 {
		t.Fatalf("Embed() dimension = %d, want 768", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed() not deterministic at component %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestMock_DistinctTexts(t *testing.T) {
	m := NewMock("", 64)
	ctx := context.Background()

	a, _ := m.Embed(ctx, "one")
	b, _ := m.Embed(ctx, "two")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Embed() returned identical vectors for different texts")
	}
}

func TestMock_UnitNorm(t *testing.T) {
	m := NewMock("", 768)

	vec, err := m.Embed(context.Background(), "normalization check")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("Embed() norm = %v, want 1", norm)
	}
}

func TestMock_EmbedBatchOrder(t *testing.T) {
	m := NewMock("", 32)
	ctx := context.Background()

	texts := []string{"alpha", "beta", "gamma"}
	batch, err := m.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("EmbedBatch() len = %d, want %d", len(batch), len(texts))
	}

	for i, text := range texts {
		single, _ := m.Embed(ctx, text)
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("EmbedBatch()[%d] differs from Embed(%q)", i, text)
			}
		}
	}
}

func TestMock_Defaults(t *testing.T) {
	m := NewMock("", 0)
	if m.Model() != "mock-embedder" {
		t.Errorf("Model() = %q, want mock-embedder", m.Model())
	}
	if m.Dimension() <= 0 {
		t.Errorf("Dimension() = %d, want > 0", m.Dimension())
	}
}
