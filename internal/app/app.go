// Package app provides the top-level application lifecycle management for the
// manifold bot. It wires together all dependencies (stores, caches, blob
// storage, pipelines, and notifications) and starts the appropriate
// goroutines based on the configured operating mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/manifoldbot/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()

	// scrapeTrigger connects the admin API's trigger endpoint to the scraper
	// loop. Nil unless the server and a scraping mode are both active.
	scrapeTrigger chan struct{}
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, starts the corresponding goroutines (plus the admin API when
// enabled), and blocks until the context is cancelled. On return it runs all
// registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
		slog.Bool("server_enabled", a.cfg.Server.Enabled),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	mode := strings.ToLower(a.cfg.Mode)
	if !a.cfg.Server.Enabled {
		return a.runMode(ctx, mode, deps)
	}

	if mode == "scrape" || mode == "full" {
		a.scrapeTrigger = make(chan struct{}, 1)
	}

	srv, hub := a.buildServer(deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.runMode(ctx, mode, deps)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})

	if hub != nil {
		g.Go(func() error {
			err := hub.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return err
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(srv.Start)

	return g.Wait()
}

// runMode dispatches to the handler for the configured operating mode.
func (a *App) runMode(ctx context.Context, mode string, deps *Dependencies) error {
	switch mode {
	case "scrape":
		return a.ScrapeMode(ctx, deps)
	case "monitor":
		return a.MonitorMode(ctx, deps)
	case "full":
		return a.FullMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
