package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// fencedJSONPattern matches a ```json ... ``` (or bare ```) code block.
var fencedJSONPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractionError indicates a model reply was not parseable as the
// expected structured shape. Callers substitute empty defaults.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Extractor asks a model for structured output and tolerantly parses the
// reply as JSON. The model is not trusted to return bare JSON: fenced
// code wrappers and surrounding prose are stripped, and the first
// well-formed object found wins.
type Extractor struct {
	llm         LLMService
	model       string
	temperature float32
}

// NewExtractor creates an Extractor using the given classification model.
func NewExtractor(llm LLMService, model string) *Extractor {
	return &Extractor{
		llm:         llm,
		model:       model,
		temperature: 0.1,
	}
}

// Extract sends the instruction plus input text to the model and parses
// the reply as a loose JSON mapping. A malformed reply yields an
// *ExtractionError, never a panic, and never fails the whole pipeline.
func (e *Extractor) Extract(ctx context.Context, instruction, input string) (map[string]any, error) {
	reply, err := e.llm.Complete(ctx, e.model, []Message{
		SystemPrompt(instruction),
		UserMessage(input),
	}, e.temperature)
	if err != nil {
		return nil, &ExtractionError{Message: "completion failed", Cause: err}
	}

	result, err := ParseJSONObject(reply)
	if err != nil {
		slog.Warn("failed to parse structured reply",
			"model", e.model,
			"reply", truncateForLog(reply, 120),
			"error", err)
		return nil, err
	}
	return result, nil
}

// ExtractText sends the instruction plus input text to the model and
// returns the raw reply, for callers that post-process the text
// themselves (e.g. ISO datetime scanning).
func (e *Extractor) ExtractText(ctx context.Context, instruction, input string) (string, error) {
	reply, err := e.llm.Complete(ctx, e.model, []Message{
		SystemPrompt(instruction),
		UserMessage(input),
	}, e.temperature)
	if err != nil {
		return "", &ExtractionError{Message: "completion failed", Cause: err}
	}
	return strings.TrimSpace(reply), nil
}

// ParseJSONObject finds and decodes the first well-formed JSON object in
// a model reply. It accepts JSON wrapped in fenced code blocks or
// embedded in explanatory prose.
func ParseJSONObject(reply string) (map[string]any, error) {
	content := strings.TrimSpace(reply)

	if matches := fencedJSONPattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	raw, ok := firstJSONObject(content)
	if !ok {
		return nil, &ExtractionError{Message: "no JSON object found in reply"}
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &ExtractionError{Message: "JSON unmarshal failed", Cause: err}
	}
	return result, nil
}

// firstJSONObject scans for the first balanced, decodable {...} substring.
func firstJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					// Keep scanning from the next opening brace.
					i = len(s)
				}
			}
		}
	}
	return "", false
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
