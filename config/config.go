package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPServer   HTTPServer
	BancaDItalia BancaDItalia
	Log          Log
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type BancaDItalia struct {
	URL  string `env:"BOI_BASE_URL" env-default:"https://tassidicambio.bancaditalia.it/terzevalute-wf-web/rest/v1.0"`
	Lang string `env:"BOI_LANG" env-default:"en"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the environment, after an optional .env file at envFile.
func Load(envFile string) (*Config, error) {
	cfg := &Config{}

	// a missing .env is fine, the environment alone may configure everything
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %v: %w", envFile, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}
	if cfg.BancaDItalia.Lang != "en" && cfg.BancaDItalia.Lang != "it" {
		return nil, fmt.Errorf("BOI_LANG must be en or it, got %q", cfg.BancaDItalia.Lang)
	}
	return cfg, nil
}
