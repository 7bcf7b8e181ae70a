// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"TRUEBOARD_HOST" yaml:"host"`
	Port int    `envconfig:"TRUEBOARD_PORT" yaml:"port"`

	// Remote store configuration
	Remote RemoteConfig `yaml:"remote"`

	// Local storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Seed job configuration
	Seed SeedConfig `yaml:"seed"`

	// Sync configuration
	Sync SyncConfig `yaml:"sync"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// RemoteConfig holds shared realtime store credentials.
// All fields except AppID are required when the remote store is enabled.
type RemoteConfig struct {
	Enabled     bool   `envconfig:"TRUEBOARD_REMOTE_ENABLED" yaml:"enabled"`
	APIKey      string `envconfig:"TRUEBOARD_REMOTE_API_KEY" yaml:"api_key"`
	AuthDomain  string `envconfig:"TRUEBOARD_REMOTE_AUTH_DOMAIN" yaml:"auth_domain"`
	DatabaseURL string `envconfig:"TRUEBOARD_REMOTE_DATABASE_URL" yaml:"database_url"`
	ProjectID   string `envconfig:"TRUEBOARD_REMOTE_PROJECT_ID" yaml:"project_id"`
	AppID       string `envconfig:"TRUEBOARD_REMOTE_APP_ID" yaml:"app_id"`

	// ConnectTimeout bounds the connectivity probe.
	ConnectTimeout time.Duration `envconfig:"TRUEBOARD_REMOTE_CONNECT_TIMEOUT" yaml:"connect_timeout"`

	// LoadTimeout bounds a full snapshot load.
	LoadTimeout time.Duration `envconfig:"TRUEBOARD_REMOTE_LOAD_TIMEOUT" yaml:"load_timeout"`

	// MaxEvaluations caps the shared document size; oldest entries beyond
	// the cap are dropped on save.
	MaxEvaluations int `envconfig:"TRUEBOARD_REMOTE_MAX_EVALUATIONS" yaml:"max_evaluations"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	// Path is the directory for the local JSON snapshot. Empty means
	// in-memory only.
	Path string `envconfig:"TRUEBOARD_STORAGE_PATH" yaml:"path"`
}

// SeedConfig holds auto-evaluation seed job settings.
type SeedConfig struct {
	// RunOnStart triggers one seed pass when the server starts.
	RunOnStart bool `envconfig:"TRUEBOARD_SEED_ON_START" yaml:"run_on_start"`

	// HubURL is the HuggingFace Hub base URL.
	HubURL string `envconfig:"TRUEBOARD_SEED_HUB_URL" yaml:"hub_url"`

	// TopModels is how many trending models to consider per pass.
	TopModels int `envconfig:"TRUEBOARD_SEED_TOP_MODELS" yaml:"top_models"`

	// RequestsPerSecond rate-limits Hub API calls.
	RequestsPerSecond float64 `envconfig:"TRUEBOARD_SEED_RPS" yaml:"requests_per_second"`
}

// SyncConfig holds periodic reconciliation settings.
type SyncConfig struct {
	// Interval between reconciliation passes against the remote store.
	Interval time.Duration `envconfig:"TRUEBOARD_SYNC_INTERVAL" yaml:"interval"`

	// SaveDebounce delays persistence after a burst of manual edits.
	SaveDebounce time.Duration `envconfig:"TRUEBOARD_SYNC_SAVE_DEBOUNCE" yaml:"save_debounce"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"TRUEBOARD_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"TRUEBOARD_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"TRUEBOARD_KAFKA_GROUP" yaml:"kafka_group"`
}

// MetricsConfig holds activity metrics settings.
type MetricsConfig struct {
	Enabled bool `envconfig:"TRUEBOARD_METRICS_ENABLED" yaml:"enabled"`

	// RedisURL enables persisted metric history when set.
	RedisURL string `envconfig:"TRUEBOARD_METRICS_REDIS_URL" yaml:"redis_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"TRUEBOARD_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"TRUEBOARD_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Remote = RemoteConfig{
		Enabled:        false,
		ConnectTimeout: 5 * time.Second,
		LoadTimeout:    10 * time.Second,
		MaxEvaluations: 500,
	}

	cfg.Storage = StorageConfig{
		Path: "",
	}

	cfg.Seed = SeedConfig{
		RunOnStart:        true,
		HubURL:            "https://huggingface.co",
		TopModels:         50,
		RequestsPerSecond: 2,
	}

	cfg.Sync = SyncConfig{
		Interval:     5 * time.Minute,
		SaveDebounce: 2 * time.Second,
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Metrics = MetricsConfig{
		Enabled: true,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d", c.Port))
	}

	// Remote validation: credentials are only required when enabled.
	// AppID is optional.
	if c.Remote.Enabled {
		if c.Remote.APIKey == "" {
			errs = append(errs, "remote api_key is required")
		}
		if c.Remote.AuthDomain == "" {
			errs = append(errs, "remote auth_domain is required")
		}
		if c.Remote.DatabaseURL == "" {
			errs = append(errs, "remote database_url is required")
		}
		if c.Remote.ProjectID == "" {
			errs = append(errs, "remote project_id is required")
		}
		if c.Remote.MaxEvaluations < 1 {
			errs = append(errs, "remote max_evaluations must be positive")
		}
	}

	if c.Seed.TopModels < 1 {
		errs = append(errs, "seed top_models must be positive")
	}

	if c.Seed.RequestsPerSecond <= 0 {
		errs = append(errs, "seed requests_per_second must be positive")
	}

	if c.Sync.Interval <= 0 {
		errs = append(errs, "sync interval must be positive")
	}

	if c.Sync.SaveDebounce < 0 {
		errs = append(errs, "sync save_debounce cannot be negative")
	}

	// Bus validation
	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	if c.Bus.Type == "kafka" && c.Bus.KafkaBrokers == "" {
		errs = append(errs, "kafka_brokers is required for kafka bus")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
