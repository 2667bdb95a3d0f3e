package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Mock is a deterministic, offline embedder. Vectors are derived from a
// hash of the input text and L2-normalized, so identical texts always map
// to identical unit vectors. Similarity scores are meaningless for real
// retrieval quality but stable, which is exactly what tests and offline
// smoke runs need.
type Mock struct {
	model     string
	dimension int
}

// NewMock creates a mock embedder with the given model tag and dimension.
func NewMock(model string, dimension int) *Mock {
	if model == "" {
		model = "mock-embedder"
	}
	if dimension <= 0 {
		dimension = 8
	}
	return &Mock{model: model, dimension: dimension}
}

// Embed returns a unit vector derived deterministically from text.
func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, m.dimension)
	sum := sha256.Sum256([]byte(text))
	seed := sum[:]

	var norm float64
	for i := range vec {
		// Stretch the digest over the full dimension by rehashing with
		// the component index.
		if i > 0 && i%8 == 0 {
			next := sha256.Sum256(seed)
			seed = next[:]
		}
		bits := binary.BigEndian.Uint32(seed[(i%8)*4 : (i%8)*4+4])
		v := float64(bits)/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// EmbedBatch embeds each text independently, preserving order.
func (m *Mock) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Model returns the mock model tag.
func (m *Mock) Model() string { return m.model }

// Dimension returns the configured dimension.
func (m *Mock) Dimension() int { return m.dimension }
