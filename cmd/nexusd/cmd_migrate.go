package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

// MigrateCmd applies pending database migrations and exits.
type MigrateCmd struct{}

func (m *MigrateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Open runs any pending migrations.
	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer store.Close()

	logger.Info("migrations applied", "path", cfg.Database.Path)
	return nil
}
