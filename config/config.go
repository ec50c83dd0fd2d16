package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for
// details on available environment variables:
//   - database.go: Database and Redis configuration
//   - engine.go: Generation engine (batching, polling, credits) configuration
//   - providers.go: Platform default provider configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Services is a comma-delimited list of service modes to run.
	Services string `env:"SERVICES" envDefault:"api"`

	// HTTPAddr is the listen address for the JSON API.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Engine configuration
	Engine  EngineConfig  `envPrefix:"ENGINE_"`
	Credits CreditConfig  `envPrefix:"CREDITS_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`

	// Platform default providers
	Providers ProvidersConfig `envPrefix:"PROVIDER_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Engine.Sanitize()
	c.Credits.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeAPI runs the HTTP job submission/status API.
	ServiceModeAPI ServiceMode = "api"
	// ServiceModeSceneWorker runs the scene batch job worker.
	ServiceModeSceneWorker ServiceMode = "scene-worker"
	// ServiceModeImageWorker runs the image batch job worker.
	ServiceModeImageWorker ServiceMode = "image-worker"
	// ServiceModeVideoWorker runs the video job worker.
	ServiceModeVideoWorker ServiceMode = "video-worker"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeAPI,
		ServiceModeSceneWorker,
		ServiceModeImageWorker,
		ServiceModeVideoWorker,
	}
}

// ParseServices parses a comma-delimited string of service names and returns
// the enabled services. It validates that all names are valid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		switch mode {
		case ServiceModeAPI, ServiceModeSceneWorker, ServiceModeImageWorker, ServiceModeVideoWorker:
			services[mode] = true
		default:
			return nil, errors.New("invalid service mode: " + name)
		}
	}

	if len(services) == 0 {
		return services, errors.New("at least one service must be specified")
	}
	return services, nil
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}
