// Package search answers time-sensitive queries through a
// search-capable completion model, degrading to a clearly-flagged
// simulation when the real capability is unavailable.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/donna-ai/donna/plugin/ai"
)

// urlPattern finds source URLs cited inline in a search reply.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// Result is the outcome of one search. Simulated marks the degraded
// path explicitly; it is never substituted silently.
type Result struct {
	Query     string
	TimeFrame string
	Text      string
	Sources   []string
	Simulated bool
	Timestamp time.Time
}

// Service is the web-search capability adapter.
type Service struct {
	llm           ai.LLMService
	searchModel   string
	fallbackModel string
	now           func() time.Time
}

// NewService creates a search service. searchModel is the
// search-capable completion model; fallbackModel simulates results when
// the search model is unreachable.
func NewService(llm ai.LLMService, searchModel, fallbackModel string) *Service {
	return &Service{
		llm:           llm,
		searchModel:   searchModel,
		fallbackModel: fallbackModel,
		now:           time.Now,
	}
}

// WithNow returns a Service using the given clock. For tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	return &Service{
		llm:           s.llm,
		searchModel:   s.searchModel,
		fallbackModel: s.fallbackModel,
		now:           now,
	}
}

// Search runs the query against the search-capable model, falling back
// to a simulated pass on failure.
func (s *Service) Search(ctx context.Context, query, timeFrame string) (*Result, error) {
	searchQuery := fmt.Sprintf("%s %s", query, timeFrame)
	if strings.EqualFold(timeFrame, "today") {
		searchQuery = fmt.Sprintf("%s in the last 24 hours", query)
	}

	text, err := s.llm.Complete(ctx, s.searchModel, []ai.Message{
		ai.UserMessage(searchQuery),
	}, 0.5)
	if err == nil {
		sources := urlPattern.FindAllString(text, -1)
		if len(sources) == 0 {
			sources = []string{"Sources would be extracted from the search-enabled model response"}
		}
		return &Result{
			Query:     query,
			TimeFrame: timeFrame,
			Text:      text,
			Sources:   sources,
			Simulated: false,
			Timestamp: s.now(),
		}, nil
	}

	slog.Warn("search model unavailable, simulating results",
		"model", s.searchModel,
		"error", err)

	return s.simulate(ctx, query, timeFrame)
}

// simulate produces a plausible but explicitly-flagged stand-in for
// real search results.
func (s *Service) simulate(ctx context.Context, query, timeFrame string) (*Result, error) {
	systemPrompt := fmt.Sprintf(`You are a helpful search assistant simulating web browsing capabilities.
The user is asking about: %q with focus on %s information.

Instructions:
1. Simulate searching for relevant and recent information
2. Format your response as if you found real search results
3. Include fictional but plausible source citations
4. Make it clear this is a simulation of search results

Provide a realistic but clearly simulated search response.`, query, timeFrame)

	text, err := s.llm.Complete(ctx, s.fallbackModel, []ai.Message{
		ai.SystemPrompt(systemPrompt),
		ai.UserMessage(fmt.Sprintf("Search for information about: %s, focusing on %s results.", query, timeFrame)),
	}, 0.7)
	if err != nil {
		return nil, err
	}

	return &Result{
		Query:     query,
		TimeFrame: timeFrame,
		Text:      text,
		Sources:   []string{"[Simulation] This is a preview of web search capabilities."},
		Simulated: true,
		Timestamp: s.now(),
	}, nil
}
