package embed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// DefaultOpenAIModel is the default OpenAI embedding model.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAI embeds text through the OpenAI embeddings API.
// Reads OPENAI_API_KEY from the environment via the SDK default options.
type OpenAI struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(model string, dimension int) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client:    openai.NewClient(),
		model:     model,
		dimension: dimension,
	}
}

// Embed returns the vector for a single text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one API call, preserving input order.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(o.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Dimensions: openai.Int(int64(o.dimension)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embed: %v", ErrEmbedding, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d embeddings for %d inputs",
			ErrEmbedding, len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Model returns the OpenAI model identifier.
func (o *OpenAI) Model() string { return o.model }

// Dimension returns the configured output dimension.
func (o *OpenAI) Dimension() int { return o.dimension }
