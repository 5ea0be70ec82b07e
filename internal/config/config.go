// Package config reads the application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
)

type Config struct {
	Join   join.Config `envPrefix:"JOINRPG_"`
	Import importer.Config

	// ImportInterval is the period of the serve loop.
	ImportInterval time.Duration `env:"IMPORT_INTERVAL" envDefault:"30s"`
	MiceCount      int           `env:"MICE_COUNT" envDefault:"1000"`

	StatusAddr string `env:"STATUS_ADDR" envDefault:":8100"`
	// JWTSecret signs tokens accepted by POST /import; empty disables it.
	JWTSecret string `env:"IMPORT_JWT_SECRET"`
}

// FromEnv reads the application config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse app env: %w", err)
	}
	if cfg.ImportInterval <= 0 {
		return Config{}, fmt.Errorf("IMPORT_INTERVAL must be positive, got %s", cfg.ImportInterval)
	}
	return cfg, nil
}
