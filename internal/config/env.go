package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds process settings read from the environment.
type Env struct {
	ConfigPath    string `env:"SCRIM_CONFIG" envDefault:"configs/pipeline.yaml"`
	Addr          string `env:"SCRIM_ADDR" envDefault:":8080"`
	RoleSourceURL string `env:"SCRIM_ROLE_SOURCE_URL"`
	RedisURL      string `env:"SCRIM_REDIS_URL"`
	DBPath        string `env:"SCRIM_DB_PATH"`
	LogLevel      string `env:"SCRIM_LOG_LEVEL"`
}

// LoadEnv loads the first .env file found among paths (missing files are
// fine) and parses SCRIM_* variables. Variables already set in the
// process environment win over .env entries.
func LoadEnv(paths ...string) (*Env, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			slog.Debug("loaded env file", "path", p)
			break
		}
	}
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &e, nil
}

// Apply overrides config fields that have an environment counterpart.
func (e *Env) Apply(cfg *PipelineConfig) {
	if e == nil {
		return
	}
	if e.RoleSourceURL != "" {
		cfg.Roles.SourceURL = e.RoleSourceURL
	}
	if e.DBPath != "" {
		cfg.Store.Path = e.DBPath
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
}
