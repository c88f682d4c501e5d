// Package app wires adapters into the core services. Every front end (CLI,
// HTTP, MCP, TUI) builds one App at start-up and shares it.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/docx"
	"github.com/custodia-labs/docqa/internal/normalisers/markdown"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// Options control how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml and prompts/. Empty means ~/.docqa.
	ConfigDir string

	// Ephemeral keeps configuration and vectors in memory only.
	Ephemeral bool
}

// NewSettingsService opens the configuration store selected by opts.
func NewSettingsService(opts Options) (*services.SettingsService, error) {
	if opts.Ephemeral {
		store := memory.NewConfigStore()
		if err := store.Set(services.KeyStoreBackend, string(domain.StoreBackendMemory)); err != nil {
			return nil, err
		}
		return services.NewSettingsService(store), nil
	}

	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// App holds the assembled services and the resources behind them.
type App struct {
	Settings  *domain.AppSettings
	AI        *ai.InitResult
	Store     driven.VectorStore
	Ingestion *services.IngestionService
	Retrieval *services.RetrievalService
	Answer    *services.AnswerService

	watcher *filesystem.Watcher
}

// New builds the application from the current settings. Warnings from AI
// initialisation are logged and leave answer generation disabled.
func New(ctx context.Context, opts Options, settingsSvc driving.SettingsService) (*App, error) {
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.Ephemeral {
		settings.Store.Backend = domain.StoreBackendMemory
	}

	aiResult, err := ai.Initialise(settings)
	if err != nil {
		return nil, fmt.Errorf("initialise embeddings: %w", err)
	}
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	store, err := storage.CreateVectorStore(ctx, &settings.Store, aiResult.EmbeddingService)
	if err != nil {
		aiResult.Close()
		return nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		aiResult.Close()
		store.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	registry := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		docx.New(),
		pdf.New(),
	)

	watcher := filesystem.NewWatcher()
	retrieval := services.NewRetrievalService(aiResult.EmbeddingService, store)
	answer := services.NewAnswerService(retrieval, aiResult.LLMService)

	if !opts.Ephemeral {
		promptDir := ""
		if opts.ConfigDir != "" {
			promptDir = filepath.Join(opts.ConfigDir, "prompts")
		}
		prompts, err := file.NewPromptStore(promptDir)
		if err != nil {
			logger.Warn("Using built-in prompts: %v", err)
		} else {
			answer.SetPromptStore(prompts)
		}
	}

	return &App{
		Settings: settings,
		AI:       aiResult,
		Store:    store,
		Ingestion: services.NewIngestionService(
			filesystem.NewSource(),
			watcher,
			registry,
			pipeline,
			aiResult.EmbeddingService,
			store,
		),
		Retrieval: retrieval,
		Answer:    answer,
		watcher:   watcher,
	}, nil
}

// Check pings the AI services and counts the store.
func (a *App) Check(ctx context.Context) error {
	aiErr := a.AI.Check(ctx)

	var storeErr error
	if _, err := a.Store.Count(ctx); err != nil {
		storeErr = &domain.VectorStoreError{Op: "count", Cause: err}
	}
	return errors.Join(aiErr, storeErr)
}

// Close releases the store, the watcher and the AI clients.
func (a *App) Close() error {
	a.AI.Close()
	return errors.Join(a.watcher.Close(), a.Store.Close())
}
