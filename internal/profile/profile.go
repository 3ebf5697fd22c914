package profile

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where donna stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs issued access tokens
	Secret string

	// OpenAI configuration
	OpenAIAPIKey  string // DONNA_OPENAI_API_KEY
	OpenAIBaseURL string // DONNA_OPENAI_BASE_URL (default: https://api.openai.com/v1)

	// Model selection
	StrongModel     string // DONNA_STRONG_MODEL (default: gpt-4o)
	WeakModel       string // DONNA_WEAK_MODEL (default: gpt-3.5-turbo)
	ClassifierModel string // DONNA_CLASSIFIER_MODEL (default: gpt-4o-mini)
	ImageModel      string // DONNA_IMAGE_MODEL (default: dall-e-3)
	SearchModel     string // DONNA_SEARCH_MODEL (default: gpt-4o-search-preview)

	// DefaultTimezone is the IANA zone applied when the user supplies none.
	DefaultTimezone string // DONNA_DEFAULT_TIMEZONE (default: Asia/Dhaka)

	// Google OAuth configuration
	GoogleClientID     string // DONNA_GOOGLE_CLIENT_ID
	GoogleClientSecret string // DONNA_GOOGLE_CLIENT_SECRET
	GoogleRedirectURI  string // DONNA_GOOGLE_REDIRECT_URI
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an OpenAI credential is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.OpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.Secret = getEnvOrDefault("DONNA_SECRET", p.Secret)
	p.OpenAIAPIKey = getEnvOrDefault("DONNA_OPENAI_API_KEY", p.OpenAIAPIKey)
	p.OpenAIBaseURL = getEnvOrDefault("DONNA_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.StrongModel = getEnvOrDefault("DONNA_STRONG_MODEL", "gpt-4o")
	p.WeakModel = getEnvOrDefault("DONNA_WEAK_MODEL", "gpt-3.5-turbo")
	p.ClassifierModel = getEnvOrDefault("DONNA_CLASSIFIER_MODEL", "gpt-4o-mini")
	p.ImageModel = getEnvOrDefault("DONNA_IMAGE_MODEL", "dall-e-3")
	p.SearchModel = getEnvOrDefault("DONNA_SEARCH_MODEL", "gpt-4o-search-preview")
	p.DefaultTimezone = getEnvOrDefault("DONNA_DEFAULT_TIMEZONE", "Asia/Dhaka")
	p.GoogleClientID = getEnvOrDefault("DONNA_GOOGLE_CLIENT_ID", p.GoogleClientID)
	p.GoogleClientSecret = getEnvOrDefault("DONNA_GOOGLE_CLIENT_SECRET", p.GoogleClientSecret)
	p.GoogleRedirectURI = getEnvOrDefault("DONNA_GOOGLE_REDIRECT_URI", "http://localhost:5173/callback")
}

// Validate validates the profile and fills in defaults for unset values.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Addr == "" {
		p.Addr = "0.0.0.0"
	}
	if p.Port == 0 {
		p.Port = 8081
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}
	if p.Data == "" {
		p.Data = "."
	}
	if p.DSN == "" {
		if p.Driver == "postgres" {
			return errors.New("dsn is required for postgres driver")
		}
		p.DSN = fmt.Sprintf("%s/donna.db", p.Data)
	}
	if p.Secret == "" {
		return errors.New("secret is required to sign access tokens")
	}
	if p.Version == "" {
		p.Version = "0.1.0"
	}
	return nil
}
