package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donna-ai/donna/plugin/ai"
)

// searchOnlyMock succeeds only for the search model, so the fallback
// path can be exercised separately.
type searchOnlyMock struct {
	searchModel string
	searchReply string
	searchErr   error
	chatReply   string
	chatErr     error
	calls       []string
}

func (m *searchOnlyMock) Complete(_ context.Context, model string, _ []ai.Message, _ float32) (string, error) {
	m.calls = append(m.calls, model)
	if model == m.searchModel {
		if m.searchErr != nil {
			return "", m.searchErr
		}
		return m.searchReply, nil
	}
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatReply, nil
}

func TestSearch_RealPathExtractsSources(t *testing.T) {
	mock := &searchOnlyMock{
		searchModel: "search-model",
		searchReply: "Big news today. See https://example.com/a and https://example.org/b for details.",
	}
	svc := NewService(mock, "search-model", "chat-model")

	result, err := svc.Search(context.Background(), "latest AI news", "this week")
	require.NoError(t, err)

	assert.False(t, result.Simulated)
	assert.Equal(t, []string{"https://example.com/a", "https://example.org/b"}, result.Sources)
	assert.Equal(t, []string{"search-model"}, mock.calls)
}

func TestSearch_UnreachableFallsBackToSimulation(t *testing.T) {
	mock := &searchOnlyMock{
		searchModel: "search-model",
		searchErr:   &ai.GatewayError{StatusCode: 503, Message: "model unavailable"},
		chatReply:   "Here are some plausible simulated results.",
	}
	svc := NewService(mock, "search-model", "chat-model")

	result, err := svc.Search(context.Background(), "election results", "today")
	require.NoError(t, err)

	assert.True(t, result.Simulated)
	assert.Contains(t, result.Sources[0], "[Simulation]")
	assert.Equal(t, []string{"search-model", "chat-model"}, mock.calls)
}

func TestSearch_BothPathsFailing(t *testing.T) {
	mock := &searchOnlyMock{
		searchModel: "search-model",
		searchErr:   &ai.GatewayError{Message: "down"},
		chatErr:     &ai.GatewayError{Message: "also down"},
	}
	svc := NewService(mock, "search-model", "chat-model")

	_, err := svc.Search(context.Background(), "anything", "recent")
	require.Error(t, err)
}

func TestSearch_FixedTimestamp(t *testing.T) {
	mock := &searchOnlyMock{
		searchModel: "search-model",
		searchReply: "Results without any links.",
	}
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(mock, "search-model", "chat-model").WithNow(func() time.Time { return fixed })

	result, err := svc.Search(context.Background(), "q", "recent")
	require.NoError(t, err)
	assert.Equal(t, fixed, result.Timestamp)
	// No URLs in the reply yields the placeholder source.
	require.Len(t, result.Sources, 1)
}
