// Package app wires storage, the model provider, the session registry, and
// the directory service into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/chat"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/config"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/directory"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/llmclient"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

// App holds all initialized services.
type App struct {
	Store     *storage.DB
	Provider  *llmclient.Client
	Registry  *chat.Registry
	Directory *directory.Service
	Logger    *slog.Logger
	Config    *config.Config
}

// New creates an App with all services initialized and durable state loaded.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	provider := llmclient.NewClient(llmclient.Config{
		APIKey:  os.Getenv(cfg.Model.APIKeyEnv),
		BaseURL: cfg.Model.BaseURL,
		Logger:  logger,
	})

	registry, err := chat.NewRegistry(chat.RegistryConfig{
		Store:             store,
		Provider:          provider,
		Logger:            logger,
		DefaultModel:      cfg.Model.Default,
		GenerationTimeout: cfg.GenerationTimeout(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	dir, err := directory.Open(ctx, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Store:     store,
		Provider:  provider,
		Registry:  registry,
		Directory: dir,
		Logger:    logger,
		Config:    cfg,
	}, nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
