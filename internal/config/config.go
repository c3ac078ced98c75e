// Package config loads the placement-cell service settings.
//
// Settings are layered: built-in defaults, then an optional YAML file named by
// PLACEMENT_CONFIG, then PLACEMENT_* environment variables. DATABASE_URL and
// PORT are honoured when the prefixed variables are absent.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PLACEMENT_"

// Config holds the HTTP server and storage settings.
type Config struct {
	Port            int           `koanf:"port"`
	DatabaseURL     string        `koanf:"database_url"`
	CORSOrigin      string        `koanf:"cors_origin"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MetricsEnabled  bool          `koanf:"metrics_enabled"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:            5000,
		CORSOrigin:      "*",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MetricsEnabled:  true,
		AutoMigrate:     true,
	}
}

// Load builds a Config from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path := os.Getenv("PLACEMENT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if !k.Exists("database_url") {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if !k.Exists("port") {
		if p := os.Getenv("PORT"); p != "" {
			if _, err := fmt.Sscanf(p, "%d", &cfg.Port); err != nil {
				return nil, fmt.Errorf("invalid PORT: %q", p)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded settings.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (set PLACEMENT_DATABASE_URL or DATABASE_URL)")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
