package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Models    ModelsConfig    `mapstructure:"models"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Training  TrainingConfig  `mapstructure:"training"`
	Queue     QueueConfig     `mapstructure:"queue"`
	KeepAlive KeepAliveConfig `mapstructure:"keepalive"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	Profile      string        `mapstructure:"profile"`   // forecasting (default) or full (adds history browsing routes)
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // bytes
}

// DataConfig describes where price records are read from
type DataConfig struct {
	Source            string         `mapstructure:"source"` // file, postgres
	Path              string         `mapstructure:"path"`   // .csv or .xlsx when source is file
	Postgres          PostgresConfig `mapstructure:"postgres"`
	SnapshotCacheSize int            `mapstructure:"snapshot_cache_size"` // loaded snapshots kept in memory
}

// PostgresConfig represents the optional database-backed price source
type PostgresConfig struct {
	DSN           string `mapstructure:"dsn"`
	Table         string `mapstructure:"table"`
	VersionColumn string `mapstructure:"version_column"` // timestamp column whose MAX() acts as the data version
}

// ModelsConfig represents the fitted-model cache configuration
type ModelsConfig struct {
	Store       string `mapstructure:"store"` // filesystem, redis, memory
	Dir         string `mapstructure:"dir"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// ForecastConfig tunes model fitting
type ForecastConfig struct {
	FitWorkers int           `mapstructure:"fit_workers"` // concurrent fit/predict calls
	FitTimeout time.Duration `mapstructure:"fit_timeout"`
	Seed       int64         `mapstructure:"seed"` // 0 seeds from the clock
	// Seasonality is auto (weekly/yearly terms once the history covers
	// two periods) or none (trend only)
	Seasonality string `mapstructure:"seasonality"`
}

// TrainingConfig controls the training endpoints
type TrainingConfig struct {
	Concurrency   int     `mapstructure:"concurrency"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// QueueConfig represents model event bus configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"` // none (default), memory, nats, redis, kafka
	URL      string `mapstructure:"url"`  // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`
	RedisStream   string `mapstructure:"redis_stream"`   // stream prefix (default: "pricecast")
	RedisGroup    string `mapstructure:"redis_group"`    // consumer group (default: "pricecast-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// KeepAliveConfig represents the self-ping loop
type KeepAliveConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen

	// Rotation, only used for file output
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}

	if err := c.Models.Validate(); err != nil {
		return fmt.Errorf("models config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.KeepAlive.Validate(); err != nil {
		return fmt.Errorf("keepalive config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.Profile != ProfileForecasting && c.Profile != ProfileFull {
		return fmt.Errorf("server.profile must be '%s' or '%s'", ProfileForecasting, ProfileFull)
	}

	return nil
}

// Validate validates data source configuration
func (c *DataConfig) Validate() error {
	switch c.Source {
	case DataSourceFile:
		if c.Path == "" {
			return fmt.Errorf("data.path is required for file source")
		}
	case DataSourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("data.postgres.dsn is required for postgres source")
		}
		if c.Postgres.Table == "" {
			return fmt.Errorf("data.postgres.table is required for postgres source")
		}
	default:
		return fmt.Errorf("data.source must be 'file' or 'postgres'")
	}

	if c.SnapshotCacheSize < 1 {
		return fmt.Errorf("data.snapshot_cache_size must be at least 1")
	}

	return nil
}

// Validate validates model store configuration
func (c *ModelsConfig) Validate() error {
	switch c.Store {
	case ModelStoreFilesystem:
		if c.Dir == "" {
			return fmt.Errorf("models.dir is required for filesystem store")
		}
	case ModelStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("models.redis_url is required for redis store")
		}
	case ModelStoreMemory:
	default:
		return fmt.Errorf("models.store must be one of: filesystem, redis, memory")
	}
	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.FitWorkers < 1 {
		return fmt.Errorf("forecast.fit_workers must be at least 1")
	}
	if c.FitTimeout <= 0 {
		return fmt.Errorf("forecast.fit_timeout must be positive")
	}
	switch c.Seasonality {
	case "auto", "none":
	default:
		return fmt.Errorf("forecast.seasonality must be one of: auto, none")
	}
	return nil
}

// Validate validates training configuration
func (c *TrainingConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("training.concurrency must be at least 1")
	}
	// 0 disables the limit
	if c.RatePerSecond < 0 {
		return fmt.Errorf("training.rate_per_second must not be negative")
	}
	if c.Burst < 1 {
		return fmt.Errorf("training.burst must be at least 1")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "none", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("queue.type must be one of: none, memory, nats, redis, kafka")
	}
	return nil
}

// Validate validates keep-alive configuration
func (c *KeepAliveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("keepalive.url is required when enabled")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("keepalive.interval must be positive")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
