package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
)

// DefaultOpenAIModel is the default OpenAI chat model.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider generates answers through the OpenAI chat completions
// API. Reads OPENAI_API_KEY from the environment via the SDK defaults.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClient(), model: model}
}

// Generate sends the assembled prompt as a system + user message pair.
func (o *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(userPrompt(req)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
	}
	return &Response{Text: resp.Choices[0].Message.Content, Model: o.model}, nil
}

// Name returns "openai".
func (*OpenAIProvider) Name() string { return "openai" }

// classifyOpenAIError maps SDK errors onto the package taxonomy.
// 4xx request-shaped failures are terminal; auth, rate-limit and server
// errors are retryable elsewhere in the chain.
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: openai: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 400, 404, 413, 422:
			return fmt.Errorf("%w: openai: %v", ErrInvalidRequest, err)
		case 408:
			return fmt.Errorf("%w: openai: %v", ErrTimeout, err)
		}
	}
	return fmt.Errorf("%w: openai: %v", ErrUnavailable, err)
}
