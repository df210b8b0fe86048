package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/api"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/app"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/config"
)

// evictionInterval is how often the idle-actor sweep runs.
const evictionInterval = 5 * time.Minute

// ServeCmd runs the HTTP server.
type ServeCmd struct{}

// Run starts the server and blocks until SIGINT/SIGTERM.
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterConfig{
		Registry:     application.Registry,
		Directory:    application.Directory,
		Logger:       logger,
		StreamBuffer: cfg.Generation.StreamBuffer,
	})

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	if idle := cfg.IdleEviction(); idle > 0 {
		go runEvictionSweep(ctx, application, idle)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// runEvictionSweep periodically drops idle session actors. Their state is
// durable; a later request rebuilds them from storage.
func runEvictionSweep(ctx context.Context, application *app.App, idle time.Duration) {
	ticker := time.NewTicker(evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			application.Registry.EvictIdle(idle)
		}
	}
}

func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	return cfg, nil
}
