// Package config loads runtime settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Source       string        `env:"PORTFOLIO_SOURCE" envDefault:"Portfolio.json"`
	Title        string        `env:"PORTFOLIO_TITLE" envDefault:"My Portfolio"`
	FetchTimeout time.Duration `env:"PORTFOLIO_FETCH_TIMEOUT" envDefault:"10s"`
	Watch        bool          `env:"PORTFOLIO_WATCH" envDefault:"false"`
	VisitsDB     string        `env:"VISITS_DB"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`

	S3 S3Config
}

// S3Config configures object storage for s3:// sources.
type S3Config struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"auto"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("PORTFOLIO_FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Level maps LogLevel onto an slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
