package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int    `env:"PORT" envDefault:"8080"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"./lessonlab.db"`
	SessionSecret string `env:"SESSION_SECRET"`
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	ReconcileCron string `env:"RECONCILE_CRON" envDefault:"*/5 * * * *"`
}

// Production reports whether the app runs in production mode, which turns on
// the Secure attribute of the session cookie.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET must be set")
	}
	return cfg, nil
}
