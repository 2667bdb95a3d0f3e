package embed

import (
	"context"
	"errors"
	"testing"
)

func TestNew_UnknownProvider(t *testing.T) {
	tests := []string{"", "chroma", "huggingface"}

	for _, provider := range tests {
		t.Run("provider="+provider, func(t *testing.T) {
			_, err := New(context.Background(), Config{Provider: provider})
			if !errors.Is(err, ErrUnknownProvider) {
				t.Errorf("New(%q) error = %v, want ErrUnknownProvider", provider, err)
			}
		})
	}
}

func TestNew_Mock(t *testing.T) {
	e, err := New(context.Background(), Config{Provider: ProviderMock, Model: "m", Dimension: 16})
	if err != nil {
		t.Fatalf("New(mock) error = %v", err)
	}
	if e.Model() != "m" {
		t.Errorf("Model() = %q, want m", e.Model())
	}
	if e.Dimension() != 16 {
		t.Errorf("Dimension() = %d, want 16", e.Dimension())
	}
}
