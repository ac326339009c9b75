package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Resolver ResolverConfig `yaml:"resolver"`
	Session  SessionConfig  `yaml:"session"`
	Events   EventsConfig   `yaml:"events"`
	Download DownloadConfig `yaml:"download"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// ResolverConfig holds the upstream resolve API configuration.
type ResolverConfig struct {
	Endpoint string `yaml:"endpoint" envconfig:"RESOLVER_ENDPOINT" default:"https://www.tikwm.com/api/"`
	// FallbackEndpoints are known alternates. Resolution never falls over to them.
	FallbackEndpoints []string      `yaml:"fallback_endpoints" envconfig:"RESOLVER_FALLBACK_ENDPOINTS" default:"https://api.tiklydown.eu.org/api/download,https://tikcdn.io/api/v1/video"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"RESOLVER_TIMEOUT" default:"0s"` // 0 = no timeout
	UserAgent         string        `yaml:"user_agent" envconfig:"RESOLVER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	RateLimit         float64       `yaml:"rate_limit" envconfig:"RESOLVER_RATE_LIMIT" default:"1"` // requests per second, 0 = unlimited
	RateBurst         int           `yaml:"rate_burst" envconfig:"RESOLVER_RATE_BURST" default:"1"`
}

// SessionConfig holds per-client session bookkeeping configuration.
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout" envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	PasteDebounce time.Duration `yaml:"paste_debounce" envconfig:"SESSION_PASTE_DEBOUNCE" default:"500ms"`
}

// EventsConfig holds activity log configuration.
type EventsConfig struct {
	RingBufferSize  int    `yaml:"ring_buffer_size" envconfig:"EVENTS_RING_BUFFER_SIZE" default:"1000"`
	PersistToSQLite bool   `yaml:"persist_to_sqlite" envconfig:"EVENTS_PERSIST_SQLITE" default:"false"`
	SQLitePath      string `yaml:"sqlite_path" envconfig:"EVENTS_SQLITE_PATH" default:"/data/tikgrab/events.db"`
	RetentionDays   int    `yaml:"retention_days" envconfig:"EVENTS_RETENTION_DAYS" default:"30"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	Dir           string        `yaml:"dir" envconfig:"DOWNLOAD_DIR" default:"."`
	Workers       int           `yaml:"workers" envconfig:"DOWNLOAD_WORKERS" default:"4"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DOWNLOAD_READ_TIMEOUT" default:"60s"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"DOWNLOAD_RETRY_DELAY" default:"2s"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" envconfig:"DOWNLOAD_MAX_RETRY_DELAY" default:"30s"`
	MinFreeBytes  int64         `yaml:"min_free_bytes" envconfig:"DOWNLOAD_MIN_FREE_BYTES" default:"104857600"` // 100MB
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Resolver.Endpoint == "" {
		return fmt.Errorf("RESOLVER_ENDPOINT is required")
	}
	if c.Resolver.RateLimit < 0 {
		return fmt.Errorf("RESOLVER_RATE_LIMIT must not be negative")
	}
	if c.Resolver.RateLimit > 0 && c.Resolver.RateBurst < 1 {
		return fmt.Errorf("RESOLVER_RATE_BURST must be at least 1")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	if c.Events.PersistToSQLite && c.Events.SQLitePath == "" {
		return fmt.Errorf("EVENTS_SQLITE_PATH is required when persistence is enabled")
	}
	if c.Download.Workers < 1 {
		return fmt.Errorf("DOWNLOAD_WORKERS must be at least 1")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
