package llm

import (
	"context"
	"errors"
	"testing"
)

func TestNewChainFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewChainFromConfig(context.Background(), Config{
		Providers: []string{"openai", "anthropic"},
	}, nil)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("NewChainFromConfig() error = %v, want ErrUnknownProvider", err)
	}
}

func TestNewChainFromConfig_Order(t *testing.T) {
	chain, err := NewChainFromConfig(context.Background(), Config{
		Providers:   []string{ProviderOllama, ProviderMock},
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "qwen2.5:7b",
	}, nil)
	if err != nil {
		t.Fatalf("NewChainFromConfig() error = %v", err)
	}

	got := chain.Providers()
	if len(got) != 2 || got[0] != "ollama" || got[1] != "mock" {
		t.Errorf("Providers() = %v, want [ollama mock]", got)
	}
}

func TestNewRateLimited_Disabled(t *testing.T) {
	inner := NewMockProvider()
	if got := NewRateLimited(inner, 0, 1); got != Provider(inner) {
		t.Error("NewRateLimited(rps=0) should return the inner provider unchanged")
	}
}
