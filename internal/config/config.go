package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all portecho configuration.
type Config struct {
	Echo    EchoConfig
	Logging LogConfig
}

// EchoConfig holds self-loop echo run settings.
type EchoConfig struct {
	Messages    int           `envconfig:"ECHO_MESSAGES" default:"16"`
	PayloadSize int           `envconfig:"ECHO_PAYLOAD" default:"64"`
	Timeout     time.Duration `envconfig:"ECHO_TIMEOUT" default:"1s"`
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
		Echo: EchoConfig{
			Messages:    16,
			PayloadSize: 64,
			Timeout:     time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
