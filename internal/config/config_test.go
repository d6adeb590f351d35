package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3001", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 50, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.EnableMockData)
	assert.False(t, cfg.UseBackend)
	assert.True(t, cfg.Scheduler.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "owm-key")
	t.Setenv("ENABLE_MOCK_DATA", "true")
	t.Setenv("PORT", "8080")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("WARMUP_LOCATIONS", "vail,alta")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "owm-key", cfg.OpenWeatherAPIKey)
	assert.True(t, cfg.EnableMockData)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, []string{"vail", "alta"}, cfg.Scheduler.WarmupLocations)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoadFromFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEATHERAPI_KEY=from-dotenv\n"), 0o600))
	path := filepath.Join(dir, "snowhound.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
use_backend: true
api_base_url: https://snow.example.com
cache:
  driver: sqlite
  sqlite_path: /var/lib/snowhound/cache.db
log:
  format: console
`), 0o600))
	t.Cleanup(func() { os.Unsetenv("WEATHERAPI_KEY") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.UseBackend)
	assert.Equal(t, "https://snow.example.com", cfg.APIBaseURL)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "/var/lib/snowhound/cache.db", cfg.Cache.SQLitePath)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "from-dotenv", cfg.WeatherAPIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("CACHE_DRIVER", "memcached")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid config")

	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("PORT", "http")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
