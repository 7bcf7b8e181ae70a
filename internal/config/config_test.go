package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	// Set environment variables
	os.Setenv("TRUEBOARD_PORT", "9090")
	os.Setenv("TRUEBOARD_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("TRUEBOARD_PORT")
		os.Unsetenv("TRUEBOARD_LOG_LEVEL")
	}()

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
host: "127.0.0.1"
port: 8888
log:
  level: warn
  format: json
sync:
  interval: 10m
seed:
  top_models: 25
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Host)
	}

	if cfg.Port != 8888 {
		t.Errorf("Port = %d, want 8888", cfg.Port)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}

	if cfg.Sync.Interval != 10*time.Minute {
		t.Errorf("Sync.Interval = %v, want 10m", cfg.Sync.Interval)
	}

	if cfg.Seed.TopModels != 25 {
		t.Errorf("Seed.TopModels = %d, want 25", cfg.Seed.TopModels)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Port)
	}

	if cfg.Remote.MaxEvaluations != 500 {
		t.Errorf("default Remote.MaxEvaluations = %d, want 500", cfg.Remote.MaxEvaluations)
	}

	if cfg.Remote.ConnectTimeout != 5*time.Second {
		t.Errorf("default Remote.ConnectTimeout = %v, want 5s", cfg.Remote.ConnectTimeout)
	}

	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("default Sync.Interval = %v, want 5m", cfg.Sync.Interval)
	}

	if cfg.Bus.Type != "memory" {
		t.Errorf("default Bus.Type = %s, want memory", cfg.Bus.Type)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name: "remote enabled without credentials",
			mutate: func(c *Config) {
				c.Remote.Enabled = true
			},
			wantErr: "remote api_key is required",
		},
		{
			name: "remote enabled with credentials but no app id is fine",
			mutate: func(c *Config) {
				c.Remote.Enabled = true
				c.Remote.APIKey = "key"
				c.Remote.AuthDomain = "example.firebaseapp.com"
				c.Remote.DatabaseURL = "redis://localhost:6379/0"
				c.Remote.ProjectID = "true-board"
			},
			wantErr: "",
		},
		{
			name:    "invalid bus type",
			mutate:  func(c *Config) { c.Bus.Type = "nats" },
			wantErr: "invalid bus type",
		},
		{
			name: "kafka bus without brokers",
			mutate: func(c *Config) {
				c.Bus.Type = "kafka"
			},
			wantErr: "kafka_brokers is required",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "invalid log level",
		},
		{
			name:    "zero sync interval",
			mutate:  func(c *Config) { c.Sync.Interval = 0 },
			wantErr: "sync interval must be positive",
		},
		{
			name:    "zero top models",
			mutate:  func(c *Config) { c.Seed.TopModels = 0 },
			wantErr: "top_models must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 8080}
	if got := cfg.Address(); got != "localhost:8080" {
		t.Errorf("Address() = %s, want localhost:8080", got)
	}
}
