package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all shell configuration.
type Config struct {
	Server     ServerConfig
	Bridge     BridgeConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Downloads  DownloadConfig
	Navigation NavigationConfig
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7323" toml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" toml:"host"`
}

// BridgeConfig holds privacy backend bridge configuration.
type BridgeConfig struct {
	Endpoint string        `envconfig:"BRIDGE_ENDPOINT" default:"http://localhost:7324" toml:"endpoint"`
	Timeout  time.Duration `envconfig:"BRIDGE_TIMEOUT" default:"30s" toml:"timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// DownloadConfig holds downloads panel configuration.
type DownloadConfig struct {
	PollInterval time.Duration `envconfig:"DOWNLOAD_POLL_INTERVAL" default:"2s" toml:"poll_interval"`
}

// NavigationConfig holds tab navigation configuration.
type NavigationConfig struct {
	SearchURL   string        `envconfig:"NAV_SEARCH_URL" default:"https://duckduckgo.com/?q=" toml:"search_url"`
	SettleDelay time.Duration `envconfig:"NAV_SETTLE_DELAY" default:"800ms" toml:"settle_delay"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile overlays a TOML file onto cfg; values present in the file
// replace whatever Load put there, so an explicitly passed config file
// wins over the environment. Missing file is not an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7323",
			Host: "127.0.0.1",
		},
		Bridge: BridgeConfig{
			Endpoint: "http://localhost:7324",
			Timeout:  30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Downloads: DownloadConfig{
			PollInterval: 2 * time.Second,
		},
		Navigation: NavigationConfig{
			SearchURL:   "https://duckduckgo.com/?q=",
			SettleDelay: 800 * time.Millisecond,
		},
	}
}
