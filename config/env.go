// Package config loads proof-of-sus settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Tracing controls the optional OTLP exporter.
type Tracing struct {
	Endpoint string `env:"PROOF_OF_SUS_OTEL_ENDPOINT"`
	Enabled  bool   `env:"PROOF_OF_SUS_OTEL_ENABLED" envDefault:"true"`
}

// Active reports whether spans should be exported.
func (t Tracing) Active() bool {
	return t.Enabled && t.Endpoint != ""
}

// Config is the CLI configuration.
type Config struct {
	DBPath     string     `env:"PROOF_OF_SUS_DB_PATH" envDefault:"proof-of-sus.db"`
	LogLevel   slog.Level `env:"PROOF_OF_SUS_LOG_LEVEL" envDefault:"info"`
	Players    uint32     `env:"PROOF_OF_SUS_PLAYERS" envDefault:"5"`
	Impostors  uint32     `env:"PROOF_OF_SUS_IMPOSTORS" envDefault:"1"`
	MaxPlayers uint32     `env:"PROOF_OF_SUS_MAX_PLAYERS" envDefault:"15"`
	TasksToWin uint32     `env:"PROOF_OF_SUS_TASKS_TO_WIN" envDefault:"6"`
	Tracing    Tracing
}

// Load parses and validates the environment. Its errors wrap ErrInvalid.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// Validate checks the demo roster against the game limits.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("PROOF_OF_SUS_DB_PATH is required"))
	}
	if c.MaxPlayers < 4 {
		errs = append(errs, fmt.Errorf("max players must be at least 4, got %d", c.MaxPlayers))
	}
	if c.TasksToWin == 0 {
		errs = append(errs, errors.New("tasks to win must be positive"))
	}
	if c.Players < 4 || c.Players > c.MaxPlayers {
		errs = append(errs, fmt.Errorf("players must be between 4 and %d, got %d", c.MaxPlayers, c.Players))
	}
	if c.Impostors == 0 || c.Impostors >= c.Players {
		errs = append(errs, fmt.Errorf("impostors must be at least 1 and fewer than players, got %d of %d", c.Impostors, c.Players))
	}
	return errors.Join(errs...)
}
