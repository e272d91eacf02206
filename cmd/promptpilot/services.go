package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kalambet/promptpilot/internal/api"
	"github.com/kalambet/promptpilot/internal/config"
	"github.com/kalambet/promptpilot/internal/engine"
	"github.com/kalambet/promptpilot/internal/history"
	"github.com/kalambet/promptpilot/internal/judge"
	"github.com/kalambet/promptpilot/internal/ollama"
	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/reranking"
	"github.com/kalambet/promptpilot/internal/retrieval"
	"github.com/kalambet/promptpilot/internal/storage"
)

// services is everything the HTTP API and the MCP server share.
type services struct {
	store    *storage.Store
	searcher *retrieval.Searcher
	pruner   *history.Pruner
	deps     api.Deps
}

func setupLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func generationConfig(cfg config.Config) engine.DetectConfig {
	return engine.DetectConfig{
		Provider:         cfg.Generation.Provider,
		Model:            cfg.Generation.Model,
		GeminiAPIKey:     cfg.Generation.GeminiAPIKey,
		OpenAIAPIKey:     cfg.Generation.OpenAIAPIKey,
		AnthropicAPIKey:  cfg.Generation.AnthropicAPIKey,
		OpenRouterAPIKey: cfg.Generation.OpenRouterAPIKey,
		OllamaBaseURL:    cfg.Ollama.BaseURL,
	}
}

// buildServices opens storage and wires the planning and execution pipeline.
// A missing generation provider is not an error: the reranker passes
// candidates through and the executor returns unexecuted plans.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	registry, err := engine.Detect(ctx, generationConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("detecting generation provider: %w", err)
	}

	def := registry.Default()
	if oe, ok := def.(*engine.OllamaEngine); ok {
		// A local model that cannot be readied still leaves planning usable.
		if err := ollama.EnsureReady(ctx, oe.Client(), oe.Model(), os.Stderr); err != nil {
			slog.Warn("ollama not ready; chain steps will fail until it is", "error", err)
		}
	}
	if def == nil {
		slog.Warn(config.CredentialHint())
	} else {
		slog.Info("generation provider ready", "provider", def.Name())
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	searcher, err := retrieval.NewSearcher(store, retrieval.SearchConfig{
		Fuzziness: cfg.Search.Fuzziness,
		CacheSize: cfg.Search.CacheSize,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	selector := retrieval.NewSelector(retrieval.Weights{
		TitleAction:    cfg.Selection.WeightTitleAction,
		ContentAction:  cfg.Selection.WeightContentAction,
		TitleKeyword:   cfg.Selection.WeightTitleKeyword,
		ContentKeyword: cfg.Selection.WeightContentKeyword,
	})
	reranker := reranking.NewReranker(def, cfg.Rerank.Enabled, cfg.RerankTimeout())
	executor := pipeline.NewExecutor(engine.WithTimeout(def, cfg.GenerationTimeout()), store)

	return &services{
		store:    store,
		searcher: searcher,
		pruner:   history.NewPruner(store, cfg.HistoryRetention(), cfg.HistoryPruneInterval()),
		deps: api.Deps{
			Store:     store,
			OwnerID:   cfg.Vault.OwnerID,
			Planner:   pipeline.NewPlanner(store, selector, reranker),
			Executor:  executor,
			Searcher:  searcher,
			Optimizer: optimizer.New(registry),
			Judge:     judge.New(registry),
		},
	}, nil
}

func (s *services) Close() {
	s.searcher.Close()
	if err := s.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
	}
}
