// Package image generates images through an OpenAI-compatible endpoint.
package image

import (
	"context"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/donna-ai/donna/plugin/ai"
)

// Service calls the image-generation port.
type Service struct {
	client *openai.Client
	model  string
}

// NewService creates an image generation service.
func NewService(cfg *ai.Config) *Service {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.ImageModel,
	}
}

// Generate produces one image and returns its URL. size is a concrete
// pixel-dimension string (e.g. "1792x1024"); quality is "standard" or
// "hd"; style is "vivid" or "natural".
func (s *Service) Generate(ctx context.Context, prompt, size, quality, style string) (string, error) {
	start := time.Now()
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Model:   s.model,
		Prompt:  prompt,
		N:       1,
		Size:    size,
		Quality: quality,
		Style:   style,
	})
	latency := time.Since(start)

	if err != nil {
		slog.Error("image generation failed",
			"model", s.model,
			"size", size,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", &ai.GatewayError{Message: "image generation failed", Cause: err}
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &ai.GatewayError{Message: "image generation returned no data"}
	}

	slog.Debug("image generated",
		"model", s.model,
		"size", size,
		"latency_ms", latency.Milliseconds())

	return resp.Data[0].URL, nil
}

// SizeFromKeyword maps a coarse size keyword to a concrete
// pixel-dimension string. Unknown keywords fall back to square.
func SizeFromKeyword(keyword string) string {
	switch keyword {
	case "portrait":
		return "1024x1792"
	case "landscape":
		return "1792x1024"
	case "square", "":
		return "1024x1024"
	default:
		return "1024x1024"
	}
}

// KeywordFromSize is the inverse mapping, used when rendering the
// confirmation text.
func KeywordFromSize(size string) string {
	switch size {
	case "1024x1792":
		return "portrait"
	case "1792x1024":
		return "landscape"
	default:
		return "square"
	}
}
