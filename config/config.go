// Package config reads the server's process configuration from the environment.
//
// Business settings (prices, salary, admin PIN) are not here; they live in the
// config table and are edited through the API.
package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	Environment string   `env:"ENV" envDefault:"dev"` // dev, prod
	Release     string   `env:"RELEASE"`
	StaticDir   string   `env:"STATIC_DIR" envDefault:"./web/dist"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"diaristas.db"`

	// Logging & error reporting
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN string `env:"SENTRY_DSN"`

	// Payment scheduler
	SchedulerEnabled  bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1h"`

	// Household
	Timezone          string `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
	AdminPINBootstrap string `env:"ADMIN_PIN_BOOTSTRAP"` // seeds admin_pin when none is stored
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %s", c.SchedulerInterval)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location is the household's time zone; "today" is evaluated there.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
