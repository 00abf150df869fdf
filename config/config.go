package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Environment variables overlaid by ApplyEnv.
const (
	EnvVPSURL  = "VPS_MT5_URL"
	EnvVPSKey  = "VPS_API_KEY"
	EnvDBPath  = "PROPJOURNAL_DB"
	EnvKeyFile = "PROPJOURNAL_KEY_FILE"
)

// Config represents the complete journal configuration
type Config struct {
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
	VPS    VPSConfig    `json:"vps" yaml:"vps"`
	Secret SecretConfig `json:"secret" yaml:"secret"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Server ServerConfig `json:"server" yaml:"server"`
	Cron   CronConfig   `json:"cron" yaml:"cron"`
}

// LedgerConfig locates the SQLite ledger
type LedgerConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// VPSConfig describes the trade history feed
type VPSConfig struct {
	URL     string `json:"url" yaml:"url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"` // e.g. "30s"
}

// ParseTimeout converts the timeout string to time.Duration
func (v VPSConfig) ParseTimeout() (time.Duration, error) {
	if v.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(v.Timeout)
}

// SecretConfig locates the credential encryption key
type SecretConfig struct {
	KeyFile string `json:"key_file" yaml:"key_file"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Encoding          string `json:"encoding" yaml:"encoding"` // "json" or "console"
	Development       bool   `json:"development" yaml:"development"`
	DisableCaller     bool   `json:"disable_caller,omitempty" yaml:"disable_caller,omitempty"`
	DisableStacktrace bool   `json:"disable_stacktrace,omitempty" yaml:"disable_stacktrace,omitempty"`
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
}

// CronConfig schedules the background sync
type CronConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Sync    string `json:"sync" yaml:"sync"` // six-field spec, seconds first
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// the file may carry the feed api key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays the environment onto c. Unset variables leave the
// file values alone.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvVPSURL); v != "" {
		c.VPS.URL = v
	}
	if v := os.Getenv(EnvVPSKey); v != "" {
		c.VPS.APIKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Ledger.DBPath = v
	}
	if v := os.Getenv(EnvKeyFile); v != "" {
		c.Secret.KeyFile = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path is required")
	}
	if c.Secret.KeyFile == "" {
		return fmt.Errorf("secret.key_file is required")
	}
	d, err := c.VPS.ParseTimeout()
	if err != nil {
		return fmt.Errorf("vps.timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("vps.timeout must not be negative")
	}
	if c.Log.Encoding != "" && c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}
	if c.Cron.Enabled {
		if _, err := cron.NewParser(cronFields).Parse(c.Cron.Sync); err != nil {
			return fmt.Errorf("cron.sync: %w", err)
		}
	}
	return nil
}

// cronFields matches a runner built with cron.WithSeconds.
const cronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{DBPath: "./propjournal.db"},
		VPS:    VPSConfig{Timeout: "30s"},
		Secret: SecretConfig{KeyFile: "./secret.key"},
		Log:    LogConfig{Level: "info", Encoding: "console"},
		Server: ServerConfig{HTTPAddr: ":8080"},
		Cron:   CronConfig{Sync: "0 */15 * * * *"},
	}
}
