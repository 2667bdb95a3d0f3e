package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/docs"
	"github.com/hulo-lang/hulomind/internal/embed"
	"github.com/hulo-lang/hulomind/internal/llm"
	"github.com/hulo-lang/hulomind/internal/retrieval"
	"github.com/hulo-lang/hulomind/internal/service"
	"github.com/hulo-lang/hulomind/internal/vectorstore"
)

// failingProvider always reports itself unavailable.
type failingProvider struct{}

func (failingProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return nil, llm.ErrUnavailable
}

func (failingProvider) Name() string { return "failing" }

// newTestServer wires a server over the memory store and mock embedder.
// With mockFallback true and no real providers, ask is served by the mock.
func newTestServer(t *testing.T, providers []llm.Provider, mockFallback bool) (http.Handler, vectorstore.Store, embed.Embedder) {
	t.Helper()

	store := vectorstore.NewMemory(0)
	embedder := embed.NewMock("test-model", 64)
	engine := retrieval.New(store, embedder, retrieval.Config{}, nil)
	chain := llm.NewChain(providers, mockFallback, nil)
	loader := docs.NewLoader(1000, 200, nil)
	knowledge := service.NewKnowledge(store, engine, chain, embedder, loader, service.Config{}, nil)

	return NewServer(knowledge, nil).Handler(), store, embedder
}

// seed stores one chunk embedded from its own text, so a query with the
// same text matches with score 1.0.
func seed(t *testing.T, store vectorstore.Store, embedder embed.Embedder, id, text, path string) {
	t.Helper()

	vec, err := embedder.Embed(context.Background(), text)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	err = store.Upsert(context.Background(), []chunk.Chunk{{
		ID:         id,
		Text:       text,
		Title:      "Doc " + id,
		Path:       path,
		Embedding:  vec,
		EmbedModel: embedder.Model(),
	}})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	handler, store, embedder := newTestServer(t, nil, true)

	query := "loop statements in Hulo"
	seed(t, store, embedder, "c1", query, "grammar/loops.md")

	rec := postJSON(t, handler, "/api/search", `{"query":"`+query+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "c1" {
		t.Errorf("results = %+v, want the seeded chunk", resp.Results)
	}
	if resp.Results[0].Score < 0.99 {
		t.Errorf("score = %v, want ~1.0 for an exact match", resp.Results[0].Score)
	}
	if resp.Rounds < 1 {
		t.Errorf("rounds = %d, want >= 1", resp.Rounds)
	}
}

func TestSearchEndpoint_NoResults(t *testing.T) {
	handler, _, _ := newTestServer(t, nil, true)

	rec := postJSON(t, handler, "/api/search", `{"query":"nothing stored"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Empty results serialize as [], not null.
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("body = %s, want empty results array", rec.Body)
	}
}

func TestSearchEndpoint_BadRequests(t *testing.T) {
	handler, _, _ := newTestServer(t, nil, true)

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"malformed json", `{`, "bad_request"},
		{"unknown field", `{"q":"x"}`, "bad_request"},
		{"empty query", `{"query":""}`, "invalid_query"},
		{"whitespace query", `{"query":"   "}`, "invalid_query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler, "/api/search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error JSON: %v", err)
			}
			if resp.Code != tt.wantError {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantError)
			}
			if resp.RequestID == "" {
				t.Error("error envelope missing the request ID")
			}
		})
	}
}

func TestAskEndpoint_MockFallback(t *testing.T) {
	handler, store, embedder := newTestServer(t, nil, true)

	query := "how do conditionals work"
	seed(t, store, embedder, "c1", query, "grammar/conditionals.md")

	rec := postJSON(t, handler, "/api/ask", `{"query":"`+query+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var answer service.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if answer.Provider != "mock" {
		t.Errorf("provider = %q, want mock", answer.Provider)
	}
	if !answer.Fallback {
		t.Error("fallback = false, want true for the mock provider")
	}
	if len(answer.Citations) != 1 || answer.Citations[0].Path != "grammar/conditionals.md" {
		t.Errorf("citations = %+v, want the seeded chunk", answer.Citations)
	}
}

func TestAskEndpoint_NoContext(t *testing.T) {
	handler, _, _ := newTestServer(t, nil, true)

	rec := postJSON(t, handler, "/api/ask", `{"query":"no docs ingested yet"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var answer service.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if answer.Provider != "none" {
		t.Errorf("provider = %q, want none", answer.Provider)
	}
	if answer.Text != service.NoContextAnswer {
		t.Errorf("text = %q, want the canned answer", answer.Text)
	}
}

func TestAskEndpoint_NoProvider(t *testing.T) {
	handler, store, embedder := newTestServer(t, []llm.Provider{failingProvider{}}, false)

	query := "a question without a provider"
	seed(t, store, embedder, "c1", query, "guide/x.md")

	rec := postJSON(t, handler, "/api/ask", `{"query":"`+query+`"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body: %s", rec.Code, rec.Body)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if resp.Code != "no_provider" {
		t.Errorf("code = %q, want no_provider", resp.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler, store, embedder := newTestServer(t, nil, true)
	seed(t, store, embedder, "c1", "some text", "a.md")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /health = %d %q, want 200 ok", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ready = %d, want 200", rec.Code)
	}
	var ready readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ready); err != nil {
		t.Fatalf("invalid readiness JSON: %v", err)
	}
	if ready.Status != "ready" || ready.Chunks != 1 {
		t.Errorf("readiness = %+v, want ready with 1 chunk", ready)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler, _, _ := newTestServer(t, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing generated X-Request-ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want the caller's ID echoed", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler, _, _ := newTestServer(t, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/search = %d, want 405", rec.Code)
	}
}
