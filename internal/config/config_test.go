package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "unknown profile",
			mutate:  func(c *Config) { c.Server.Profile = "admin" },
			wantErr: true,
		},
		{
			name:    "full profile",
			mutate:  func(c *Config) { c.Server.Profile = ProfileFull },
			wantErr: false,
		},
		{
			name:    "file source without path",
			mutate:  func(c *Config) { c.Data.Path = "" },
			wantErr: true,
		},
		{
			name: "postgres source without dsn",
			mutate: func(c *Config) {
				c.Data.Source = "postgres"
			},
			wantErr: true,
		},
		{
			name: "postgres source with dsn",
			mutate: func(c *Config) {
				c.Data.Source = "postgres"
				c.Data.Postgres.DSN = "postgres://localhost/prices"
			},
			wantErr: false,
		},
		{
			name:    "unknown model store",
			mutate:  func(c *Config) { c.Models.Store = "s3" },
			wantErr: true,
		},
		{
			name:    "redis model store without url",
			mutate:  func(c *Config) { c.Models.Store = "redis" },
			wantErr: true,
		},
		{
			name:    "memory model store",
			mutate:  func(c *Config) { c.Models.Store = "memory"; c.Models.Dir = "" },
			wantErr: false,
		},
		{
			name:    "zero fit workers",
			mutate:  func(c *Config) { c.Forecast.FitWorkers = 0 },
			wantErr: true,
		},
		{
			name:    "zero fit timeout",
			mutate:  func(c *Config) { c.Forecast.FitTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "unknown seasonality",
			mutate:  func(c *Config) { c.Forecast.Seasonality = "monthly" },
			wantErr: true,
		},
		{
			name:    "seasonality off",
			mutate:  func(c *Config) { c.Forecast.Seasonality = "none" },
			wantErr: false,
		},
		{
			name:    "zero training rate disables the limit",
			mutate:  func(c *Config) { c.Training.RatePerSecond = 0 },
			wantErr: false,
		},
		{
			name:    "negative training rate",
			mutate:  func(c *Config) { c.Training.RatePerSecond = -1 },
			wantErr: true,
		},
		{
			name:    "kafka without brokers",
			mutate:  func(c *Config) { c.Queue.Type = "kafka" },
			wantErr: true,
		},
		{
			name:    "nats with url",
			mutate:  func(c *Config) { c.Queue.Type = "nats"; c.Queue.URL = "nats://localhost:4222" },
			wantErr: false,
		},
		{
			name: "keepalive enabled without interval",
			mutate: func(c *Config) {
				c.KeepAlive.Enabled = true
				c.KeepAlive.Interval = 0
			},
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "invalid logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9100
  profile: full
data:
  path: /srv/prices.csv
forecast:
  fit_timeout: 5s
  seasonality: none
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.HTTPPort)
	assert.Equal(t, ProfileFull, cfg.Server.Profile)
	assert.True(t, cfg.Server.HistoryRoutesEnabled())
	assert.Equal(t, "/srv/prices.csv", cfg.Data.Path)
	assert.Equal(t, 5*time.Second, cfg.Forecast.FitTimeout)
	assert.Equal(t, "none", cfg.Forecast.Seasonality)
	// untouched sections keep defaults
	assert.Equal(t, "filesystem", cfg.Models.Store)
	assert.Equal(t, 4, cfg.Forecast.FitWorkers)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9100\n"), 0644))

	t.Setenv("PRICECAST_SERVER_HTTP_PORT", "9200")
	t.Setenv("PRICECAST_MODELS_STORE", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.HTTPPort)
	assert.Equal(t, "memory", cfg.Models.Store)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestGetServerAddress(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:8000", cfg.GetServerAddress())
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models.Dir = filepath.Join(t.TempDir(), "nested", "models")

	require.NoError(t, cfg.EnsureDirectories())
	info, err := os.Stat(cfg.Models.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
