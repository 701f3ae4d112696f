// Package config loads installer configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all installer configuration.
type Config struct {
	Daemon  DaemonConfig
	Logging LogConfig
}

// DaemonConfig holds installd endpoint configuration.
type DaemonConfig struct {
	Address       string        `envconfig:"INSTALLD_ADDR" default:"localhost:50100"`
	SocketPath    string        `envconfig:"INSTALLD_SOCKET" default:"/dev/socket/installd"`
	DialTimeout   time.Duration `envconfig:"INSTALLD_DIAL_TIMEOUT" default:"10s"`
	ReadyInterval time.Duration `envconfig:"INSTALLD_READY_INTERVAL" default:"1s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
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
		Daemon: DaemonConfig{
			Address:       "localhost:50100",
			SocketPath:    "/dev/socket/installd",
			DialTimeout:   10 * time.Second,
			ReadyInterval: 1 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
