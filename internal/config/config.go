// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package config loads and validates the server configuration from
// defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/harmonium-app/harmonium/internal/recommend"
)

// DefaultConfigPaths are searched in order when no explicit config
// path is given via CONFIG_PATH.
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"/etc/harmonium/config.yaml",
	"/config/config.yaml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the root configuration for the server.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Logging   LoggingConfig    `koanf:"logging"`
	Recommend recommend.Config `koanf:"recommend"`
	Events    EventsConfig     `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB file path, or ":memory:" for an in-memory
	// database.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the number of DuckDB threads (0 = use NumCPU).
	Threads int `koanf:"threads"`

	// MaxOpenConns bounds the sql.DB connection pool (0 = default).
	MaxOpenConns int `koanf:"max_open_conns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// EventsConfig holds play-event pipeline settings.
type EventsConfig struct {
	// Topic is the pubsub topic play events are published on.
	Topic string `koanf:"topic"`

	// BufferSize is the in-process channel buffer for the pubsub
	// transport.
	BufferSize int `koanf:"buffer_size"`

	// DedupTTL is how long consumed event IDs are remembered for
	// duplicate suppression.
	DedupTTL time.Duration `koanf:"dedup_ttl"`

	// BreakerMaxFailures trips the publish circuit breaker after this
	// many consecutive failures.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerTimeout is how long the breaker stays open before
	// allowing a probe.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/harmonium.duckdb",
			MaxMemory:    "512MB",
			Threads:      0,
			MaxOpenConns: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: recommend.DefaultConfig(),
		Events: EventsConfig{
			Topic:              "playback.events",
			BufferSize:         256,
			DedupTTL:           time.Hour,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
	}
}

// Validate checks the configuration for values that would prevent the
// server from starting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("events.topic must not be empty")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("events.buffer_size must not be negative, got %d", c.Events.BufferSize)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
