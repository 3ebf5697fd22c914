// Package agent classifies user prompts into intents and dispatches to
// the matching capability.
package agent

import "strings"

// Intent is the classified purpose of a user prompt.
type Intent string

const (
	IntentScheduleMeeting Intent = "schedule_meeting"
	IntentCreateImage     Intent = "create_image"
	IntentSearchRequest   Intent = "search_request"
	IntentGeneralQuery    Intent = "general_query"
)

// ParseIntent maps a raw classification label to an Intent, defaulting
// to general_query for anything unrecognized.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentScheduleMeeting:
		return IntentScheduleMeeting
	case IntentCreateImage:
		return IntentCreateImage
	case IntentSearchRequest:
		return IntentSearchRequest
	default:
		return IntentGeneralQuery
	}
}

// ActionType tags a pending or completed side effect.
type ActionType string

const (
	ActionCalendarEventPending   ActionType = "calendar_event_pending"
	ActionCalendarEventCreated   ActionType = "calendar_event_created"
	ActionCalendarEventFailed    ActionType = "calendar_event_failed"
	ActionCalendarEventNeedsAuth ActionType = "calendar_event_needs_auth"
	ActionImageCreated           ActionType = "image_created"
	ActionSearchPerformed        ActionType = "search_performed"
)

// Action describes a side effect the surrounding service must execute
// or has executed. Calendar actions start as pending and are updated in
// place (pending -> created/failed/needs_auth) as the write resolves;
// the whole list is persisted verbatim with the assistant turn.
type Action struct {
	Type      ActionType     `json:"type"`
	ID        string         `json:"id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	ImageURL  string         `json:"image_url,omitempty"`
	Prompt    string         `json:"prompt,omitempty"`
	Query     string         `json:"query,omitempty"`
	TimeFrame string         `json:"time_frame,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Simulated bool           `json:"simulated,omitempty"`
}
