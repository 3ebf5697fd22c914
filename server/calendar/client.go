// Package calendar manages events on the user's Google Calendar.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/donna-ai/donna/plugin/ai/schedule"
	"github.com/donna-ai/donna/server/timezone"
)

const (
	defaultBaseURL = "https://www.googleapis.com/calendar/v3"
	requestTimeout = 15 * time.Second
)

// ErrNotAuthorized is returned when the stored Google credentials are
// missing or no longer usable.
var ErrNotAuthorized = errors.New("google calendar is not authorized for this account")

// ErrEventNotFound is returned when the provider has no event with the
// requested id.
var ErrEventNotFound = errors.New("calendar event not found")

// TokenSourceFactory builds a self-refreshing token source from a
// stored refresh token.
type TokenSourceFactory interface {
	TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource
}

// EventTime is one endpoint of an event: either a date for all-day
// events or a zoned datetime.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Event is the provider's representation of a calendar event.
type Event struct {
	ID          string     `json:"id,omitempty"`
	Status      string     `json:"status,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *EventTime `json:"start,omitempty"`
	End         *EventTime `json:"end,omitempty"`
	Recurrence  []string   `json:"recurrence,omitempty"`
}

// Client manages events on the primary calendar via the Calendar v3
// REST API.
type Client struct {
	tokens  TokenSourceFactory
	baseURL string
}

func NewClient(tokens TokenSourceFactory) *Client {
	return &Client{
		tokens:  tokens,
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL returns a Client targeting the given API endpoint. For
// tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.baseURL = baseURL
	return &clone
}

// InsertDraft writes a drafted event to the user's primary calendar
// using the stored refresh token.
func (c *Client) InsertDraft(ctx context.Context, refreshToken string, draft *schedule.CalendarEventDraft) (*Event, error) {
	resp, err := c.do(ctx, refreshToken, http.MethodPost, "/calendars/primary/events", draftToEvent(draft))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	event, err := decodeEvent(resp, "insert")
	if err != nil {
		return nil, err
	}
	slog.Info("calendar event created",
		"event_id", event.ID,
		"summary", draft.Summary)
	return event, nil
}

// ListEvents returns the events of the primary calendar. timeMin and
// timeMax are optional RFC 3339 bounds passed through to the provider.
func (c *Client) ListEvents(ctx context.Context, refreshToken, timeMin, timeMax string) ([]*Event, error) {
	path := "/calendars/primary/events"
	query := url.Values{}
	if timeMin != "" {
		query.Set("timeMin", timeMin)
	}
	if timeMax != "" {
		query.Set("timeMax", timeMax)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := c.do(ctx, refreshToken, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "list"); err != nil {
		return nil, err
	}
	listing := &struct {
		Items []*Event `json:"items"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(listing); err != nil {
		return nil, errors.Wrap(err, "failed to decode list response")
	}
	if listing.Items == nil {
		return []*Event{}, nil
	}
	return listing.Items, nil
}

// GetEvent fetches a single event by provider id.
func (c *Client) GetEvent(ctx context.Context, refreshToken, eventID string) (*Event, error) {
	resp, err := c.do(ctx, refreshToken, http.MethodGet, "/calendars/primary/events/"+url.PathEscape(eventID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, ErrEventNotFound
	}
	return decodeEvent(resp, "get")
}

// PatchEvent applies a partial update to an existing event.
func (c *Client) PatchEvent(ctx context.Context, refreshToken, eventID string, update *Event) (*Event, error) {
	resp, err := c.do(ctx, refreshToken, http.MethodPatch, "/calendars/primary/events/"+url.PathEscape(eventID), update)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, ErrEventNotFound
	}
	event, err := decodeEvent(resp, "patch")
	if err != nil {
		return nil, err
	}
	slog.Info("calendar event updated", "event_id", event.ID)
	return event, nil
}

// DeleteEvent removes an event from the primary calendar.
func (c *Client) DeleteEvent(ctx context.Context, refreshToken, eventID string) error {
	resp, err := c.do(ctx, refreshToken, http.MethodDelete, "/calendars/primary/events/"+url.PathEscape(eventID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrEventNotFound
	}
	if err := checkStatus(resp, "delete"); err != nil {
		return err
	}
	slog.Info("calendar event deleted", "event_id", eventID)
	return nil
}

// do performs one authenticated provider call. Authorization failures,
// both at the token source and from the provider, collapse into
// ErrNotAuthorized.
func (c *Client) do(ctx context.Context, refreshToken, method, path string, body any) (*http.Response, error) {
	if refreshToken == "" {
		return nil, ErrNotAuthorized
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		payload = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpClient := oauth2.NewClient(ctx, c.tokens.TokenSource(ctx, refreshToken))
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		// An unusable refresh token surfaces as a RetrieveError from
		// the token source before the request is sent.
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, ErrNotAuthorized
		}
		return nil, errors.Wrapf(err, "calendar %s request failed", method)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, ErrNotAuthorized
	}
	return resp, nil
}

func checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	slog.Warn("calendar request rejected",
		"operation", operation,
		"status", resp.StatusCode,
		"detail", string(detail))
	return errors.Errorf("calendar %s failed with status %d", operation, resp.StatusCode)
}

func decodeEvent(resp *http.Response, operation string) (*Event, error) {
	if err := checkStatus(resp, operation); err != nil {
		return nil, err
	}
	event := &Event{}
	if err := json.NewDecoder(resp.Body).Decode(event); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s response", operation)
	}
	return event, nil
}

// draftToEvent converts an event draft into the provider payload. The
// all-day end date is exclusive in the Calendar API.
func draftToEvent(draft *schedule.CalendarEventDraft) *Event {
	event := &Event{
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
	}
	if draft.Recurrence != "" {
		event.Recurrence = []string{draft.Recurrence}
	}

	if draft.IsAllDay {
		loc, err := timezone.ParseTimezone(draft.Timezone)
		if err != nil {
			loc = time.UTC
		}
		start := draft.Start.In(loc)
		event.Start = &EventTime{Date: start.Format("2006-01-02")}
		event.End = &EventTime{Date: start.AddDate(0, 0, 1).Format("2006-01-02")}
		return event
	}

	event.Start = &EventTime{
		DateTime: draft.Start.Format(time.RFC3339),
		TimeZone: draft.Timezone,
	}
	event.End = &EventTime{
		DateTime: draft.End.Format(time.RFC3339),
		TimeZone: draft.Timezone,
	}
	return event
}
