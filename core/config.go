package core

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every process-wide setting the auth core consumes. It is
// constructed once at startup and passed by reference; core logic never
// reads the environment directly.
type Config struct {
	ListenAddr string `env:"AUTHGATE_ADDR" envDefault:":8080"`
	LogLevel   string `env:"AUTHGATE_LOG_LEVEL" envDefault:"info"`

	// Google OAuth client registration.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	// GoogleIssuerURL points at the OIDC issuer. Overridable so tests can
	// run against a local mock provider.
	GoogleIssuerURL string `env:"GOOGLE_ISSUER_URL" envDefault:"https://accounts.google.com"`

	// SessionSecret signs first-party session tokens. Never logged.
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"500m"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"authgate.db"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	return &cfg, nil
}
