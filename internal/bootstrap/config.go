// Package bootstrap wires configuration, storage, and services into runnable
// components.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/filmforge/filmforge/config"
)

// InitLogger initializes the structured logger. Output format and level come
// from the environment because logging starts before config parsing: JSON at
// info by default, human-readable text when DEV=true, and LOG_LEVEL overrides
// the level either way.
func InitLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevelFromEnv()}

	var handler slog.Handler
	if devModeFromEnv() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func devModeFromEnv() bool {
	if strings.EqualFold(os.Getenv("DEV"), "true") {
		return true
	}
	nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
	return nodeEnv == "development" || nodeEnv == "dev"
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is applied first when present so local development does
// not need exported variables.
func LoadConfig() (config.AppConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig checks that the SERVICES list names at least one
// valid mode before any infrastructure is dialed.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}
	if len(services) == 0 {
		return errors.New("no services enabled")
	}
	return nil
}
