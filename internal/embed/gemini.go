package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini embedding model.
// gemini-embedding-001 outputs 3072 dimensions natively but supports
// truncation via OutputDimensionality; our pgvector schema uses 768.
const DefaultGeminiModel = "gemini-embedding-001"

// Gemini embeds text through the Google GenAI API.
// Reads GEMINI_API_KEY from the environment via the genai client.
type Gemini struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGemini creates a Gemini embedder. The client is created once and
// reused; it is safe for concurrent use.
func NewGemini(ctx context.Context, model string, dimension int) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating genai client: %v", ErrEmbedding, err)
	}
	return &Gemini{client: client, model: model, dimension: dimension}, nil
}

// Embed returns the vector for a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one API call, preserving input order.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dim := int32(g.dimension) // #nosec G115 -- dimension validated by config
	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %v", ErrEmbedding, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d inputs",
			ErrEmbedding, len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: gemini returned empty embedding at index %d", ErrEmbedding, i)
		}
		vecs[i] = e.Values
	}
	return vecs, nil
}

// Model returns the Gemini model identifier.
func (g *Gemini) Model() string { return g.model }

// Dimension returns the configured output dimension.
func (g *Gemini) Dimension() int { return g.dimension }
