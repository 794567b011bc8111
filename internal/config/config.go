package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "FLASHKIT"

// Config holds process settings read from FLASHKIT_* environment variables.
type Config struct {
	Addr           string `envconfig:"ADDR" default:":3000"`
	SessionKey     string `envconfig:"SESSION_KEY" default:"flash-next"`
	AttributeKey   string `envconfig:"ATTRIBUTE_KEY" default:"flash"`
	Implementation string `envconfig:"IMPLEMENTATION" default:"flash.Store"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	Development    bool   `envconfig:"DEV" default:"false"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that may also have been overridden by flags.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%s_ADDR must not be empty", envPrefix)
	}
	if strings.TrimSpace(c.SessionKey) == "" {
		return fmt.Errorf("%s_SESSION_KEY must not be empty", envPrefix)
	}
	if strings.TrimSpace(c.AttributeKey) == "" {
		return fmt.Errorf("%s_ATTRIBUTE_KEY must not be empty", envPrefix)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%s_LOG_LEVEL: %w", envPrefix, err)
	}
	return lvl, nil
}
