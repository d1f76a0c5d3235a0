package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[server]
port = 9100

[cache]
shared_backend = "redis"
mem_ttl = "15s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "redis", cfg.Cache.SharedBackend)
	require.Equal(t, 15*time.Second, cfg.Cache.MemTTL.Duration)

	// Untouched sections keep their defaults.
	require.Equal(t, 30*time.Second, cfg.Cache.SharedTTL.Duration)
	require.Equal(t, "https://api.kraken.com", cfg.Providers.Kraken.BaseURL)
	require.True(t, cfg.Providers.Binance.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORACLE_SERVER_PORT", "9200")
	t.Setenv("ORACLE_CACHE_SHARED_BACKEND", "none")
	t.Setenv("ORACLE_CACHE_COVERAGE_THRESHOLD", "0.75")
	t.Setenv("ORACLE_BINANCE_ENABLED", "false")
	t.Setenv("ORACLE_KRAKEN_TIMEOUT", "3s")
	t.Setenv("ORACLE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "none", cfg.Cache.SharedBackend)
	require.Equal(t, 0.75, cfg.Cache.CoverageThreshold)
	require.False(t, cfg.Providers.Binance.Enabled)
	require.Equal(t, 3*time.Second, cfg.Providers.Kraken.Timeout.Duration)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("ORACLE_SERVER_PORT", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)
	require.Equal(t, 8000, cfg.Server.Port)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	cfg.LogLevel = "loud"
	cfg.Cache.SharedBackend = "memcached"
	cfg.Cache.CoverageThreshold = 2
	cfg.Providers.CoinGecko.Enabled = false
	cfg.Providers.Binance.Enabled = false
	cfg.Providers.Kraken.Enabled = false

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "port must be 1-65535")
	require.Contains(t, err.Error(), "unknown log_level")
	require.Contains(t, err.Error(), "unknown shared_backend")
	require.Contains(t, err.Error(), "coverage_threshold")
	require.Contains(t, err.Error(), "at least one provider")
}

func TestValidateBackendConditional(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.SharedBackend = "redis"
	cfg.Redis.Addr = ""
	// Broken postgres settings must not matter when the backend is redis.
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis: addr")
	require.NotContains(t, err.Error(), "postgres:")
}
