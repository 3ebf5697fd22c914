package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/donna-ai/donna/plugin/ai"
	"github.com/donna-ai/donna/plugin/ai/image"
	"github.com/donna-ai/donna/plugin/ai/schedule"
	"github.com/donna-ai/donna/plugin/ai/search"
	"github.com/donna-ai/donna/server/timezone"
)

// ImageGenerator is the image-generation port consumed by the router.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size, quality, style string) (string, error)
}

// Searcher is the web-search port consumed by the router.
type Searcher interface {
	Search(ctx context.Context, query, timeFrame string) (*search.Result, error)
}

// Router classifies a prompt and dispatches to the matching capability,
// assembling a uniform (response text, actions) result. It never
// propagates adapter failures upward: every failure becomes a
// user-facing sentence.
type Router struct {
	llm         ai.LLMService
	extractor   *ai.Extractor
	builder     *schedule.Builder
	images      ImageGenerator
	searcher    Searcher
	strongModel string
	weakModel   string
	defaultZone *time.Location
	now         func() time.Time
}

// NewRouter creates a Router wired to its capability ports.
func NewRouter(llm ai.LLMService, cfg *ai.Config, builder *schedule.Builder, images ImageGenerator, searcher Searcher, defaultZone *time.Location) *Router {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &Router{
		llm:         llm,
		extractor:   ai.NewExtractor(llm, cfg.ClassifierModel),
		builder:     builder,
		images:      images,
		searcher:    searcher,
		strongModel: cfg.StrongModel,
		weakModel:   cfg.WeakModel,
		defaultZone: defaultZone,
		now:         time.Now,
	}
}

// WithNow returns a Router using the given clock. For tests.
func (r *Router) WithNow(now func() time.Time) *Router {
	clone := *r
	clone.now = now
	return &clone
}

// Route classifies the prompt and runs the matching capability. The
// returned response text is never empty; actions describe side effects
// for the surrounding service to execute.
func (r *Router) Route(ctx context.Context, prompt string, history []ai.Message) (string, []Action) {
	intent, params := r.classify(ctx, prompt)

	slog.Debug("routing prompt",
		"intent", intent,
		"prompt", truncateForLog(prompt, 60))

	switch intent {
	case IntentScheduleMeeting:
		return r.handleSchedule(ctx, params)
	case IntentCreateImage:
		return r.handleImage(ctx, prompt, params)
	case IntentSearchRequest:
		return r.handleSearch(ctx, prompt, params)
	default:
		return r.handleGeneral(ctx, prompt, history), nil
	}
}

// classify runs the single intent classification call. Extraction
// failures degrade to general_query with an empty parameter set.
func (r *Router) classify(ctx context.Context, prompt string) (Intent, map[string]any) {
	result, err := r.extractor.Extract(ctx, intentInstruction(r.now().In(r.defaultZone)), prompt)
	if err != nil {
		slog.Warn("intent classification failed, defaulting to general query",
			"error", err,
			"prompt", truncateForLog(prompt, 60))
		return IntentGeneralQuery, map[string]any{}
	}

	intent := ParseIntent(stringField(result, "intent"))
	params, _ := result["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return intent, params
}

func (r *Router) handleSchedule(ctx context.Context, params map[string]any) (string, []Action) {
	now := r.now().In(r.defaultZone)
	draft := r.builder.Build(ctx, params, now)

	loc, err := timezone.ParseTimezone(draft.Timezone)
	if err != nil {
		loc = r.defaultZone
	}
	localStart := draft.Start.In(loc)
	localEnd := draft.End.In(loc)

	locationText := ""
	if draft.Location != "" {
		locationText = fmt.Sprintf(" at %s", draft.Location)
	}
	descriptionText := ""
	if draft.Description != "" {
		descriptionText = fmt.Sprintf("\n\nDescription: %s", draft.Description)
	}

	var responseText string
	if draft.IsAllDay {
		responseText = fmt.Sprintf("I've prepared an all-day event '%s'%s on %s.%s",
			draft.Summary, locationText, localStart.Format("Monday, January 2, 2006"), descriptionText)
	} else {
		startFormatted := localStart.Format("Monday, January 2 at 3:04 PM")
		endFormatted := localEnd.Format("3:04 PM")
		if localStart.Year() != localEnd.Year() || localStart.YearDay() != localEnd.YearDay() {
			endFormatted = localEnd.Format("Monday, January 2 at 3:04 PM")
		}
		responseText = fmt.Sprintf("I've prepared a calendar event for '%s'%s from %s to %s.%s",
			draft.Summary, locationText, startFormatted, endFormatted, descriptionText)
	}

	action := Action{
		Type: ActionCalendarEventPending,
		ID:   uuid.NewString(),
		Details: map[string]any{
			"summary":        draft.Summary,
			"description":    draft.Description,
			"location":       draft.Location,
			"start_datetime": draft.Start.Format(time.RFC3339),
			"end_datetime":   draft.End.Format(time.RFC3339),
			"timezone":       draft.Timezone,
			"is_all_day":     draft.IsAllDay,
			"recurrence":     draft.Recurrence,
			// Filled in once the provider write resolves.
			"htmlLink": nil,
		},
	}

	return responseText, []Action{action}
}

func (r *Router) handleImage(ctx context.Context, prompt string, params map[string]any) (string, []Action) {
	imagePrompt := stringField(params, "prompt_for_image")
	if imagePrompt == "" {
		imagePrompt = prompt
	}
	size := image.SizeFromKeyword(stringField(params, "size"))
	quality := stringField(params, "quality")
	if quality == "" {
		quality = "standard"
	}
	style := stringField(params, "style")
	if style == "" {
		style = "vivid"
	}

	url, err := r.images.Generate(ctx, imagePrompt, size, quality, style)
	if err != nil {
		return fmt.Sprintf("I'm sorry, I couldn't generate that image. Error: %v", err), nil
	}

	responseText := fmt.Sprintf("Here's the image I've created based on your description. I hope it matches what you were looking for!\n\nSpecifications: %s format, %s quality, %s style",
		image.KeywordFromSize(size), quality, style)

	return responseText, []Action{{
		Type:     ActionImageCreated,
		ImageURL: url,
		Prompt:   imagePrompt,
	}}
}

func (r *Router) handleSearch(ctx context.Context, prompt string, params map[string]any) (string, []Action) {
	query := stringField(params, "search_query")
	if query == "" {
		query = prompt
	}
	timeFrame := stringField(params, "time_frame")
	if timeFrame == "" {
		timeFrame = "recent"
	}

	result, err := r.searcher.Search(ctx, query, timeFrame)
	if err != nil {
		return fmt.Sprintf("I'm sorry, I couldn't perform that search. Error: %v", err), nil
	}

	var responseText string
	if result.Simulated {
		responseText = fmt.Sprintf(`# Search Preview: %s

%s

---
*Note: This is a simulation of web search capabilities. In the actual implementation, real-time web search results would be provided.*
`, query, result.Text)
	} else {
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Search Results: %s\n\n%s\n\n---\nSources:\n", query, result.Text)
		for i, source := range result.Sources {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, source)
		}
		responseText = sb.String()
	}

	return responseText, []Action{{
		Type:      ActionSearchPerformed,
		Query:     query,
		TimeFrame: timeFrame,
		Timestamp: result.Timestamp.Format(time.RFC3339),
		Simulated: result.Simulated,
	}}
}

func (r *Router) handleGeneral(ctx context.Context, prompt string, history []ai.Message) string {
	complexity := r.assessComplexity(ctx, prompt)
	category := r.assessCategory(ctx, prompt)
	model := SelectModel(r.strongModel, r.weakModel, category, complexity)

	slog.Debug("general query model selected",
		"model", model,
		"category", category,
		"complexity", complexity)

	messages := ai.FormatMessages(generalSystemPrompt, prompt, history)
	reply, err := r.llm.Complete(ctx, model, messages, 0.7)
	if err != nil {
		slog.Warn("general query completion failed", "error", err)
		return "I'm sorry, I couldn't process your request at the moment."
	}
	return reply
}

// assessComplexity asks for a 1-3 complexity score, defaulting to 1.
func (r *Router) assessComplexity(ctx context.Context, prompt string) int {
	reply, err := r.llm.Complete(ctx, r.weakModel, []ai.Message{
		ai.SystemPrompt(complexityInstruction),
		ai.UserMessage(prompt),
	}, 0.1)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n < 1 || n > 3 {
		return 1
	}
	return n
}

// assessCategory asks for a task category, defaulting to general.
func (r *Router) assessCategory(ctx context.Context, prompt string) TaskCategory {
	reply, err := r.llm.Complete(ctx, r.weakModel, []ai.Message{
		ai.SystemPrompt(categoryInstruction),
		ai.UserMessage(prompt),
	}, 0.1)
	if err != nil {
		return CategoryGeneral
	}
	return TaskCategory(strings.ToLower(strings.TrimSpace(reply)))
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
