// Package app provides the top-level application lifecycle for the price
// oracle. It wires together the provider adapters, cache tiers, oracle, and
// HTTP server, and runs them until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bitvera/priceoracle/internal/config"
	"github.com/bitvera/priceoracle/internal/oracle"
	"github.com/bitvera/priceoracle/internal/server"
	"github.com/bitvera/priceoracle/internal/server/handler"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the HTTP server, and blocks until the
// context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	o := oracle.New(deps.Providers, deps.MemCache, deps.SharedCache, oracle.Config{
		SharedTTL:         a.cfg.Cache.SharedTTL.Duration,
		CoverageThreshold: a.cfg.Cache.CoverageThreshold,
		StaleGrace:        a.cfg.Cache.StaleGrace.Duration,
	}, a.logger)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Prices: handler.NewPricesHandler(o, a.logger),
			Health: handler.NewHealthHandler(deps.SharedPinger, a.logger),
			Assets: handler.NewAssetsHandler(),
		},
		a.logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	a.logger.InfoContext(ctx, "oracle serving",
		slog.Int("port", a.cfg.Server.Port),
		slog.Int("providers", len(deps.Providers)),
		slog.String("shared_backend", a.cfg.Cache.SharedBackend),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
