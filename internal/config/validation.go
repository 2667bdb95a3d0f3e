package config

import (
	"fmt"
	"log/slog"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Store backend
	if c.StoreKind != StoreMemory && c.StoreKind != StorePersistent {
		return fmt.Errorf("%w: %q (must be %q or %q)",
			ErrInvalidStoreKind, c.StoreKind, StoreMemory, StorePersistent)
	}

	// 2. Embedder
	validEmbedders := []string{EmbedderGemini, EmbedderOpenAI, EmbedderMock}
	if !slices.Contains(validEmbedders, c.EmbedderProvider) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidEmbedder, c.EmbedderProvider, validEmbedders)
	}
	// 4096 covers every hosted embedding model in use; pgvector indexes
	// degrade past 2000 dimensions, so warn rather than block.
	if c.EmbedderDimension < 1 || c.EmbedderDimension > 4096 {
		return fmt.Errorf("%w: must be between 1 and 4096, got %d",
			ErrInvalidDimension, c.EmbedderDimension)
	}
	if c.StoreKind == StorePersistent && c.EmbedderDimension > 2000 {
		slog.Warn("embedding dimension exceeds pgvector HNSW index limit",
			"dimension", c.EmbedderDimension)
	}

	// 3. Retrieval
	for _, tk := range []struct {
		name  string
		value int
	}{
		{"broad_top_k", c.BroadTopK},
		{"refined_top_k", c.RefinedTopK},
		{"max_results", c.MaxResults},
	} {
		if tk.value < 1 || tk.value > 100 {
			return fmt.Errorf("%w: %s must be between 1 and 100, got %d",
				ErrInvalidTopK, tk.name, tk.value)
		}
	}
	for _, th := range []struct {
		name  string
		value float32
	}{
		{"broad_threshold", c.BroadThreshold},
		{"refined_threshold", c.RefinedThreshold},
	} {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("%w: %s must be between 0.0 and 1.0, got %.2f",
				ErrInvalidThreshold, th.name, th.value)
		}
	}
	if c.RefinedThreshold < c.BroadThreshold {
		return fmt.Errorf("%w: refined_threshold (%.2f) must not be below broad_threshold (%.2f)",
			ErrInvalidThreshold, c.RefinedThreshold, c.BroadThreshold)
	}

	// 4. LLM chain
	if len(c.LLMProviders) == 0 && !c.MockFallback {
		return fmt.Errorf("%w: llm_providers is empty and mock_fallback is disabled", ErrInvalidProvider)
	}
	validLLMs := []string{LLMOpenAI, LLMGemini, LLMOllama, LLMMock}
	for _, name := range c.LLMProviders {
		if !slices.Contains(validLLMs, name) {
			return fmt.Errorf("%w: %q is not valid, must be one of: %v",
				ErrInvalidProvider, name, validLLMs)
		}
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 2097152 {
		return fmt.Errorf("%w: must be between 1 and 2,097,152, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	// 5. Chunking
	if c.ChunkSize < 100 || c.ChunkSize > 100000 {
		return fmt.Errorf("%w: chunk_size must be between 100 and 100,000, got %d",
			ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be between 0 and chunk_size-1, got %d",
			ErrInvalidChunking, c.ChunkOverlap)
	}

	// 6. PostgreSQL, only when the persistent store is selected. The
	// memory store must stay usable without a database around.
	if c.StoreKind == StorePersistent {
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validatePostgres() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgres)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrInvalidPostgres, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgres)
	}
	if c.PostgresPassword == "" {
		return fmt.Errorf("%w: postgres_password must be set", ErrInvalidPostgres)
	}
	if c.PostgresPassword == "hulomind_dev_password" {
		slog.Warn("using default development password for PostgreSQL",
			"warning", "change postgres_password for production deployments")
	}

	// Modern SSL modes only; allow/prefer are deprecated (MITM vulnerable).
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: ssl mode %q is not valid, must be one of: %v",
			ErrInvalidPostgres, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}
