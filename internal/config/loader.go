package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProfileForecasting = "forecasting"
	ProfileFull        = "full"
)

// Data sources
const (
	DataSourceFile     = "file"
	DataSourcePostgres = "postgres"
)

// Model stores
const (
	ModelStoreFilesystem = "filesystem"
	ModelStoreRedis      = "redis"
	ModelStoreMemory     = "memory"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/pricecast")
	}

	setDefaults(v)

	// PRICECAST_DATA_PATH overrides data.path
	v.SetEnvPrefix("PRICECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// loadDotEnv populates the process environment from a dotenv file.
// Variables already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.profile", d.Server.Profile)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout.String())
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.postgres.dsn", "")
	v.SetDefault("data.postgres.table", d.Data.Postgres.Table)
	v.SetDefault("data.postgres.version_column", d.Data.Postgres.VersionColumn)
	v.SetDefault("data.snapshot_cache_size", d.Data.SnapshotCacheSize)

	v.SetDefault("models.store", d.Models.Store)
	v.SetDefault("models.dir", d.Models.Dir)
	v.SetDefault("models.redis_url", "")
	v.SetDefault("models.redis_prefix", d.Models.RedisPrefix)

	v.SetDefault("forecast.fit_workers", d.Forecast.FitWorkers)
	v.SetDefault("forecast.fit_timeout", d.Forecast.FitTimeout.String())
	v.SetDefault("forecast.seed", d.Forecast.Seed)
	v.SetDefault("forecast.seasonality", d.Forecast.Seasonality)

	v.SetDefault("training.concurrency", d.Training.Concurrency)
	v.SetDefault("training.rate_per_second", d.Training.RatePerSecond)
	v.SetDefault("training.burst", d.Training.Burst)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", "")
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	v.SetDefault("keepalive.enabled", d.KeepAlive.Enabled)
	v.SetDefault("keepalive.url", d.KeepAlive.URL)
	v.SetDefault("keepalive.interval", d.KeepAlive.Interval.String())

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     8000,
			Profile:      ProfileForecasting,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			BodyLimit:    1 << 20,
		},
		Data: DataConfig{
			Source: DataSourceFile,
			Path:   "All Pricing Daily.xlsx",
			Postgres: PostgresConfig{
				Table:         "prices",
				VersionColumn: "updated_at",
			},
			SnapshotCacheSize: 4,
		},
		Models: ModelsConfig{
			Store:       ModelStoreFilesystem,
			Dir:         "models",
			RedisPrefix: "pricecast:model:",
		},
		Forecast: ForecastConfig{
			FitWorkers:  4,
			FitTimeout:  30 * time.Second,
			Seasonality: "auto",
		},
		Training: TrainingConfig{
			Concurrency:   4,
			RatePerSecond: 1,
			Burst:         2,
		},
		Queue: QueueConfig{
			Type:         "none",
			RedisStream:  "pricecast",
			RedisGroup:   "pricecast-group",
			KafkaGroupID: "pricecast",
		},
		KeepAlive: KeepAliveConfig{
			Enabled:  false,
			URL:      "http://localhost:8000",
			Interval: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}
