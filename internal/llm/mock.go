package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MockProvider is the deterministic last-resort responder. It never fails
// and never blocks, which is what guarantees the chain always returns
// something when the fallback is enabled. The answer quotes the first
// lines of the retrieved context so the caller still gets the relevant
// documentation even without a working model backend.
type MockProvider struct{}

// NewMockProvider creates the mock responder.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Generate returns a canned answer built from the request context.
func (*MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "No language model backend is currently available. ")
	fmt.Fprintf(&b, "The most relevant documentation for %q is quoted below.\n\n", req.Query)

	const maxExcerpt = 2000
	excerpt := req.Context
	if len(excerpt) > maxExcerpt {
		// Back the cut up to a rune boundary so zh documentation does
		// not end in a mangled byte.
		cut := maxExcerpt
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut] + "\n[truncated]"
	}
	b.WriteString(excerpt)

	return &Response{Text: b.String(), Model: "mock"}, nil
}

// Name returns "mock".
func (*MockProvider) Name() string { return "mock" }
