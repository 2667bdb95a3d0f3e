// Package app provides application initialization and dependency wiring.
//
// App is the container the CLI entry points build once: it owns the
// vector store, the embedder, the retrieval engine, the LLM chain and the
// knowledge service assembled from them.
package app

import (
	"context"
	"fmt"

	"github.com/hulo-lang/hulomind/internal/config"
	"github.com/hulo-lang/hulomind/internal/docs"
	"github.com/hulo-lang/hulomind/internal/embed"
	"github.com/hulo-lang/hulomind/internal/llm"
	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/retrieval"
	"github.com/hulo-lang/hulomind/internal/service"
	"github.com/hulo-lang/hulomind/internal/vectorstore"
)

// App is the core application container.
type App struct {
	Config    *config.Config
	Store     vectorstore.Store
	Embedder  embed.Embedder
	Engine    *retrieval.Engine
	Chain     *llm.Chain
	Loader    *docs.Loader
	Knowledge *service.Knowledge

	logger log.Logger
}

// Setup builds every component from configuration. The returned App must
// be closed to release the store connection.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	embedder, err := embed.New(ctx, embed.Config{
		Provider:  cfg.EmbedderProvider,
		Model:     cfg.EmbedderModel,
		Dimension: cfg.EmbedderDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectorstore.New(ctx, vectorstore.Config{
		Kind:      cfg.StoreKind,
		DSN:       cfg.PostgresDSN(),
		Dimension: cfg.EmbedderDimension,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	engine := retrieval.New(store, embedder, retrieval.Config{
		BroadTopK:        cfg.BroadTopK,
		RefinedTopK:      cfg.RefinedTopK,
		BroadThreshold:   cfg.BroadThreshold,
		RefinedThreshold: cfg.RefinedThreshold,
		MaxResults:       cfg.MaxResults,
	}, logger)

	chain, err := llm.NewChainFromConfig(ctx, llm.Config{
		Providers:         cfg.LLMProviders,
		OpenAIModel:       cfg.OpenAIModel,
		GeminiModel:       cfg.GeminiModel,
		OllamaHost:        cfg.OllamaHost,
		OllamaModel:       cfg.OllamaModel,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		MockFallback:      cfg.MockFallback,
		RequestsPerSecond: cfg.LLMRateRPS,
		Burst:             cfg.LLMRateBurst,
	}, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating LLM chain: %w", err)
	}

	loader := docs.NewLoader(cfg.ChunkSize, cfg.ChunkOverlap, logger)

	knowledge := service.NewKnowledge(store, engine, chain, embedder, loader, service.Config{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)

	return &App{
		Config:    cfg,
		Store:     store,
		Embedder:  embedder,
		Engine:    engine,
		Chain:     chain,
		Loader:    loader,
		Knowledge: knowledge,
		logger:    logger,
	}, nil
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.logger.Debug("shutting down application")
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}
