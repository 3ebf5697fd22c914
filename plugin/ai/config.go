package ai

import (
	"errors"

	"github.com/donna-ai/donna/internal/profile"
)

// Config represents AI gateway configuration.
type Config struct {
	APIKey  string
	BaseURL string

	// Models used across the assistant.
	StrongModel     string // heavyweight reasoning model
	WeakModel       string // lightweight completion model
	ClassifierModel string // intent/parameter classification
	ImageModel      string // image generation
	SearchModel     string // search-capable completion

	// RequestsPerSecond bounds the process-wide call rate to the
	// completion endpoint. Zero disables limiting.
	RequestsPerSecond float64
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		APIKey:            p.OpenAIAPIKey,
		BaseURL:           p.OpenAIBaseURL,
		StrongModel:       p.StrongModel,
		WeakModel:         p.WeakModel,
		ClassifierModel:   p.ClassifierModel,
		ImageModel:        p.ImageModel,
		SearchModel:       p.SearchModel,
		RequestsPerSecond: 10,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("API key is required")
	}
	if c.StrongModel == "" || c.WeakModel == "" || c.ClassifierModel == "" {
		return errors.New("model names are required")
	}
	return nil
}
