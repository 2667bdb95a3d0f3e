package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Defaults for the local Ollama backend.
const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "qwen2.5:7b"

	ollamaRequestTimeout = 2 * time.Minute
)

// OllamaProvider generates answers through a local Ollama instance using
// its plain HTTP generate endpoint.
type OllamaProvider struct {
	host   string
	model  string
	client *http.Client
}

// NewOllamaProvider creates an Ollama provider.
func NewOllamaProvider(host, model string) *OllamaProvider {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: ollamaRequestTimeout},
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate posts to /api/generate with streaming disabled.
func (o *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := ollamaRequest{
		Model:  o.model,
		System: req.System,
		Prompt: userPrompt(req),
		Stream: false,
	}
	if req.Temperature > 0 {
		body.Options = map[string]any{"temperature": req.Temperature}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding ollama request: %v", ErrInvalidRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building ollama request: %v", ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, classifyOllamaError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding ollama response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: ollama: %s", ErrInvalidRequest, decoded.Error)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: ollama status %d: %s", ErrUnavailable, resp.StatusCode, decoded.Error)
	case decoded.Response == "":
		return nil, fmt.Errorf("%w: ollama returned empty response", ErrUnavailable)
	}

	return &Response{Text: decoded.Response, Model: o.model}, nil
}

// Name returns "ollama".
func (*OllamaProvider) Name() string { return "ollama" }

func classifyOllamaError(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: ollama: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: ollama: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: ollama: %v", ErrUnavailable, err)
}
