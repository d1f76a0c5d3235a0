package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ORACLE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ORACLE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "ORACLE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ORACLE_SERVER_CORS_ORIGINS")

	// ── Cache ──
	setStr(&cfg.Cache.SharedBackend, "ORACLE_CACHE_SHARED_BACKEND")
	setDuration(&cfg.Cache.MemTTL, "ORACLE_CACHE_MEM_TTL")
	setDuration(&cfg.Cache.SharedTTL, "ORACLE_CACHE_SHARED_TTL")
	setDuration(&cfg.Cache.StaleGrace, "ORACLE_CACHE_STALE_GRACE")
	setFloat64(&cfg.Cache.CoverageThreshold, "ORACLE_CACHE_COVERAGE_THRESHOLD")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ORACLE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ORACLE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ORACLE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ORACLE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ORACLE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ORACLE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ORACLE_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ORACLE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ORACLE_POSTGRES_POOL_MIN_CONNS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ORACLE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ORACLE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ORACLE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ORACLE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ORACLE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ORACLE_REDIS_TLS_ENABLED")

	// ── Providers ──
	setStr(&cfg.Providers.CoinGecko.BaseURL, "ORACLE_COINGECKO_BASE_URL")
	setDuration(&cfg.Providers.CoinGecko.SimpleTimeout, "ORACLE_COINGECKO_SIMPLE_TIMEOUT")
	setDuration(&cfg.Providers.CoinGecko.MarketsTimeout, "ORACLE_COINGECKO_MARKETS_TIMEOUT")
	setBool(&cfg.Providers.CoinGecko.Enabled, "ORACLE_COINGECKO_ENABLED")
	setStr(&cfg.Providers.Binance.BaseURL, "ORACLE_BINANCE_BASE_URL")
	setDuration(&cfg.Providers.Binance.Timeout, "ORACLE_BINANCE_TIMEOUT")
	setBool(&cfg.Providers.Binance.Enabled, "ORACLE_BINANCE_ENABLED")
	setStr(&cfg.Providers.Kraken.BaseURL, "ORACLE_KRAKEN_BASE_URL")
	setDuration(&cfg.Providers.Kraken.Timeout, "ORACLE_KRAKEN_TIMEOUT")
	setBool(&cfg.Providers.Kraken.Enabled, "ORACLE_KRAKEN_ENABLED")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "ORACLE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
