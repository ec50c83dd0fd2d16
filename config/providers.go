package config

// ProvidersConfig carries the platform default credentials and endpoints used
// when neither a project override nor a user credential applies.
type ProvidersConfig struct {
	Text  ProviderDefault `envPrefix:"TEXT_"`
	Image ProviderDefault `envPrefix:"IMAGE_"`
	Video ProviderDefault `envPrefix:"VIDEO_"`
}

// ProviderDefault is one generation type's platform default backend.
type ProviderDefault struct {
	Provider string `env:"NAME"`
	Model    string `env:"MODEL"`
	APIKey   string `env:"API_KEY"`
	// Endpoint points at a self-hosted backend; empty means the provider's
	// public API.
	Endpoint string `env:"ENDPOINT"`
}

// Configured reports whether this default can actually serve requests.
func (p ProviderDefault) Configured() bool {
	return p.Provider != "" && (p.APIKey != "" || p.Endpoint != "")
}
