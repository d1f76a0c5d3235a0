package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bitvera/priceoracle/internal/cache/memory"
	"github.com/bitvera/priceoracle/internal/cache/redis"
	"github.com/bitvera/priceoracle/internal/config"
	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/httpx"
	"github.com/bitvera/priceoracle/internal/provider/binance"
	"github.com/bitvera/priceoracle/internal/provider/coingecko"
	"github.com/bitvera/priceoracle/internal/provider/kraken"
	"github.com/bitvera/priceoracle/internal/server/handler"
	"github.com/bitvera/priceoracle/internal/store/postgres"
)

// Dependencies bundles everything the oracle needs to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Providers []domain.Provider
	MemCache  *memory.Cache

	// SharedCache and SharedPinger are nil when cache.shared_backend is
	// "none".
	SharedCache  domain.SharedCache
	SharedPinger handler.Pinger
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		MemCache: memory.New(cfg.Cache.MemTTL.Duration),
	}

	// --- Provider adapters ---
	hc := httpx.New()
	if cfg.Providers.CoinGecko.Enabled {
		deps.Providers = append(deps.Providers,
			coingecko.NewSimpleClient(coingecko.Config{
				BaseURL: cfg.Providers.CoinGecko.BaseURL,
				Timeout: cfg.Providers.CoinGecko.SimpleTimeout.Duration,
			}, hc),
			coingecko.NewMarketsClient(coingecko.Config{
				BaseURL: cfg.Providers.CoinGecko.BaseURL,
				Timeout: cfg.Providers.CoinGecko.MarketsTimeout.Duration,
			}, hc),
		)
	}
	if cfg.Providers.Binance.Enabled {
		deps.Providers = append(deps.Providers, binance.New(binance.Config{
			BaseURL: cfg.Providers.Binance.BaseURL,
			Timeout: cfg.Providers.Binance.Timeout.Duration,
		}, hc))
	}
	if cfg.Providers.Kraken.Enabled {
		deps.Providers = append(deps.Providers, kraken.New(kraken.Config{
			BaseURL: cfg.Providers.Kraken.BaseURL,
			Timeout: cfg.Providers.Kraken.Timeout.Duration,
		}, hc))
	}

	// --- Shared cache tier ---
	switch strings.ToLower(cfg.Cache.SharedBackend) {
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres schema: %w", err)
		}

		deps.SharedCache = postgres.NewSnapshotStore(pgClient.Pool())
		deps.SharedPinger = pgClient

	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SharedCache = redis.NewQuoteCache(redisClient)
		deps.SharedPinger = redisClient

	case "none":
		logger.InfoContext(ctx, "shared cache disabled, running on the in-process tier alone")

	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown shared backend %q", cfg.Cache.SharedBackend)
	}

	return deps, cleanup, nil
}
