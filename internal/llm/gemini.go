package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini chat model.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider generates answers through the Google GenAI API.
// Reads GEMINI_API_KEY from the environment via the genai client.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, model string) (*GeminiProvider, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating genai client: %v", ErrUnavailable, err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Generate sends the assembled prompt with the system prompt as a system
// instruction.
func (g *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens) // #nosec G115 -- bounded by config validation
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt(req)), cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: gemini returned empty response", ErrUnavailable)
	}
	return &Response{Text: text, Model: g.model}, nil
}

// Name returns "gemini".
func (*GeminiProvider) Name() string { return "gemini" }

// classifyGeminiError maps genai API errors onto the package taxonomy.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: gemini: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 404, 413:
			return fmt.Errorf("%w: gemini: %v", ErrInvalidRequest, err)
		case 408, 504:
			return fmt.Errorf("%w: gemini: %v", ErrTimeout, err)
		}
	}
	return fmt.Errorf("%w: gemini: %v", ErrUnavailable, err)
}
