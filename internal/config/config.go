// Package config defines the top-level configuration for the price oracle
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ORACLE_* environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	Providers ProvidersConfig `toml:"providers"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// CacheConfig holds the cache-tier tunables.
type CacheConfig struct {
	// SharedBackend selects the shared-tier store: "postgres", "redis", or
	// "none" to run on the in-process tier alone.
	SharedBackend string   `toml:"shared_backend"`
	MemTTL        duration `toml:"mem_ttl"`
	SharedTTL     duration `toml:"shared_ttl"`
	// StaleGrace is the artificial freshness window given to a stale
	// fallback so the next request does not re-race dead providers.
	StaleGrace duration `toml:"stale_grace"`
	// CoverageThreshold is the fraction of requested IDs a cached record
	// must cover to be served.
	CoverageThreshold float64 `toml:"coverage_threshold"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ProvidersConfig holds per-upstream endpoints and request budgets.
type ProvidersConfig struct {
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	Binance   ProviderConfig  `toml:"binance"`
	Kraken    ProviderConfig  `toml:"kraken"`
}

// CoinGeckoConfig holds the parameters shared by the two CoinGecko adapters,
// which hit the same host through different endpoints on different budgets.
type CoinGeckoConfig struct {
	BaseURL        string   `toml:"base_url"`
	SimpleTimeout  duration `toml:"simple_timeout"`
	MarketsTimeout duration `toml:"markets_timeout"`
	Enabled        bool     `toml:"enabled"`
}

// ProviderConfig holds one upstream's endpoint and request budget.
type ProviderConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
	Enabled bool     `toml:"enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "10s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Cache: CacheConfig{
			SharedBackend:     "postgres",
			MemTTL:            duration{10 * time.Second},
			SharedTTL:         duration{30 * time.Second},
			StaleGrace:        duration{5 * time.Second},
			CoverageThreshold: 0.5,
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "priceoracle",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		Providers: ProvidersConfig{
			CoinGecko: CoinGeckoConfig{
				BaseURL:        "https://api.coingecko.com",
				SimpleTimeout:  duration{6 * time.Second},
				MarketsTimeout: duration{8 * time.Second},
				Enabled:        true,
			},
			Binance: ProviderConfig{
				BaseURL: "https://api.binance.com",
				Timeout: duration{5 * time.Second},
				Enabled: true,
			},
			Kraken: ProviderConfig{
				BaseURL: "https://api.kraken.com",
				Timeout: duration{7 * time.Second},
				Enabled: true,
			},
		},
		LogLevel: "info",
	}
}

// validBackends enumerates the accepted values for Cache.SharedBackend.
var validBackends = map[string]bool{
	"postgres": true,
	"redis":    true,
	"none":     true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	backend := strings.ToLower(c.Cache.SharedBackend)
	if !validBackends[backend] {
		errs = append(errs, fmt.Sprintf("cache: unknown shared_backend %q (valid: postgres, redis, none)", c.Cache.SharedBackend))
	}
	if c.Cache.MemTTL.Duration <= 0 {
		errs = append(errs, "cache: mem_ttl must be positive")
	}
	if c.Cache.SharedTTL.Duration <= 0 {
		errs = append(errs, "cache: shared_ttl must be positive")
	}
	if c.Cache.CoverageThreshold <= 0 || c.Cache.CoverageThreshold > 1 {
		errs = append(errs, fmt.Sprintf("cache: coverage_threshold must be in (0, 1], got %g", c.Cache.CoverageThreshold))
	}

	if backend == "postgres" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if backend == "redis" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if !c.Providers.CoinGecko.Enabled && !c.Providers.Binance.Enabled && !c.Providers.Kraken.Enabled {
		errs = append(errs, "providers: at least one provider must be enabled")
	}
	if c.Providers.CoinGecko.Enabled && c.Providers.CoinGecko.BaseURL == "" {
		errs = append(errs, "providers: coingecko.base_url must not be empty")
	}
	if c.Providers.Binance.Enabled && c.Providers.Binance.BaseURL == "" {
		errs = append(errs, "providers: binance.base_url must not be empty")
	}
	if c.Providers.Kraken.Enabled && c.Providers.Kraken.BaseURL == "" {
		errs = append(errs, "providers: kraken.base_url must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
