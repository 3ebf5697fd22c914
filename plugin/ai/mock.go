package ai

import (
	"context"
	"strings"
	"sync"
)

// MockCall records a single invocation of the mock service.
type MockCall struct {
	Model    string
	Messages []Message
}

// MockLLMService is a scripted LLMService for testing. Replies are
// selected by substring match against the system prompt, so tests can
// script the classification, component and ISO passes independently.
type MockLLMService struct {
	mu sync.Mutex

	// Responses maps a substring of the system prompt to a canned reply.
	Responses map[string]string
	// Fallback is returned when no substring matches.
	Fallback string
	// Err, when non-nil, is returned for every call.
	Err error
	// Calls records each invocation in order.
	Calls []MockCall
}

// NewMockLLMService creates an empty mock.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{Responses: map[string]string{}}
}

func (m *MockLLMService) Complete(_ context.Context, model string, messages []Message, _ float32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Model: model, Messages: messages})

	if m.Err != nil {
		return "", m.Err
	}

	system := ""
	for _, msg := range messages {
		if msg.Role == "system" {
			system = msg.Content
			break
		}
	}

	for needle, reply := range m.Responses {
		if strings.Contains(system, needle) {
			return reply, nil
		}
	}
	return m.Fallback, nil
}

// CallCount returns the number of recorded invocations.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ LLMService = (*MockLLMService)(nil)
