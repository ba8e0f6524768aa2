package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Outbox        OutboxConfig        `mapstructure:"outbox"`
	Alerts        AlertsConfig        `mapstructure:"alerts"`
	Email         EmailConfig         `mapstructure:"email"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	EventTracking EventTrackingConfig `mapstructure:"event_tracking"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// StoreConfig selects the record store backend. The memory backend
// snapshots to SnapshotPath; an empty path keeps records in process
// memory only. SeedDemo loads the demo dataset into an empty store at
// startup.
type StoreConfig struct {
	Backend      string `mapstructure:"backend"`
	SnapshotPath string `mapstructure:"snapshot_path"`
	SeedDemo     bool   `mapstructure:"seed_demo"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type OutboxConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type AlertsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Channel       string        `mapstructure:"channel"`
	Recipients    []string      `mapstructure:"recipients"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig points at an optional YAML file overriding the
// built-in parameter catalog and pattern rules.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type EventTrackingConfig struct {
	Enabled   bool                      `mapstructure:"enabled"`
	Endpoints map[string]ResourceConfig `mapstructure:"endpoints"`
}

type ResourceConfig struct {
	Create EndpointConfig `mapstructure:"create"`
	Update EndpointConfig `mapstructure:"update"`
	Delete EndpointConfig `mapstructure:"delete"`
}

type EndpointConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	EventType     string   `mapstructure:"event_type"`
	TrackedFields []string `mapstructure:"tracked_fields"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Endpoint resolves the tracking config for a resource and action.
// Unknown resources or actions are disabled.
func (c *EventTrackingConfig) Endpoint(resource, action string) (EndpointConfig, bool) {
	if c == nil || !c.Enabled {
		return EndpointConfig{}, false
	}
	rc, ok := c.Endpoints[resource]
	if !ok {
		return EndpointConfig{}, false
	}
	var ec EndpointConfig
	switch action {
	case "create":
		ec = rc.Create
	case "update":
		ec = rc.Update
	case "delete":
		ec = rc.Delete
	default:
		return EndpointConfig{}, false
	}
	return ec, ec.Enabled
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
