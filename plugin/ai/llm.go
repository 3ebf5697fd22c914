package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// GatewayError is a typed failure from the completion endpoint. Callers
// must treat it as a normal return value and apply their own fallback
// policy; no retries happen at this layer.
type GatewayError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// LLMService is the uniform completion port. All higher components
// depend on it.
type LLMService interface {
	// Complete sends an ordered message sequence to the given model and
	// returns the raw reply text, or a *GatewayError.
	Complete(ctx context.Context, model string, messages []Message, temperature float32) (string, error)
}

type llmService struct {
	client  *openai.Client
	limiter *rate.Limiter
}

// NewLLMService creates a new LLMService backed by an OpenAI-compatible API.
func NewLLMService(cfg *Config) (LLMService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &llmService{
		client:  openai.NewClientWithConfig(clientConfig),
		limiter: limiter,
	}, nil
}

func (s *llmService) Complete(ctx context.Context, model string, messages []Message, temperature float32) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", &GatewayError{Message: "rate limit wait canceled", Cause: err}
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(messages),
		Temperature: temperature,
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		gerr := asGatewayError(err)
		slog.Error("completion request failed",
			"model", model,
			"status", gerr.StatusCode,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", gerr
	}

	if len(resp.Choices) == 0 {
		return "", &GatewayError{Message: "empty response from model"}
	}

	slog.Debug("completion request completed",
		"model", model,
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}

// asGatewayError converts any transport error into a *GatewayError,
// preserving the upstream HTTP status when available.
func asGatewayError(err error) *GatewayError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GatewayError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Cause:      err,
		}
	}
	return &GatewayError{Message: err.Error(), Cause: err}
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// FormatMessages assembles a system prompt, prior history and the latest
// user turn into an ordered message sequence.
func FormatMessages(systemPrompt string, userContent string, history []Message) []Message {
	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, SystemPrompt(systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userContent))
	return messages
}
