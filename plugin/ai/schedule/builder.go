// Package schedule builds validated calendar event drafts from intent
// parameters.
package schedule

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/donna-ai/donna/plugin/ai/aitime"
	"github.com/donna-ai/donna/server/timezone"
)

const (
	// minDuration is the shortest accepted event; anything shorter is
	// clamped to clampDuration.
	minDuration   = 5 * time.Minute
	clampDuration = 30 * time.Minute
)

// CalendarEventDraft is an event description not yet persisted to the
// external calendar provider. It is constructed once per scheduling
// intent and never mutated afterwards.
type CalendarEventDraft struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start_datetime"`
	End         time.Time `json:"end_datetime"`
	Timezone    string    `json:"timezone"`
	IsAllDay    bool      `json:"is_all_day"`
	Recurrence  string    `json:"recurrence,omitempty"`
}

// Builder turns raw scheduling parameters into a fully-validated draft:
// ordering, minimum duration, non-past enforcement and all-day
// normalization are all applied here.
type Builder struct {
	resolver    *aitime.Resolver
	defaultZone *time.Location
}

// NewBuilder creates a Builder. defaultZone is applied when the caller
// supplies no usable timezone.
func NewBuilder(resolver *aitime.Resolver, defaultZone *time.Location) *Builder {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &Builder{
		resolver:    resolver,
		defaultZone: defaultZone,
	}
}

// Build resolves start and end independently and enforces the draft
// invariants. It never fails: every fallback bottoms out in a concrete
// default.
func (b *Builder) Build(ctx context.Context, params map[string]any, now time.Time) *CalendarEventDraft {
	loc := timezone.ResolveOrDefault(stringParam(params, "timezone"), b.defaultZone)
	now = now.In(loc)
	resolver := b.resolver.WithNow(func() time.Time { return now })

	startRaw := stringParam(params, "start_datetime")
	endRaw := stringParam(params, "end_datetime")

	comps := resolver.ExtractComponents(ctx, startRaw)

	start, err := resolver.ResolveWith(ctx, startRaw, comps, loc)
	if err != nil {
		start = b.defaultStart(comps, now, loc)
		slog.Debug("start datetime defaulted",
			"raw", startRaw,
			"start", start.Format(time.RFC3339))
	}

	end, err := resolver.Resolve(ctx, endRaw, loc)
	if err != nil {
		end = start.Add(time.Hour)
	}

	isAllDay := boolParam(params, "is_all_day")
	if isAllDay {
		y, m, d := start.In(loc).Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		end = time.Date(y, m, d, 23, 59, 59, 999999*int(time.Microsecond/time.Nanosecond), loc)
	}

	// Invariant clamps, in this order: too-short before not-in-the-past,
	// so a stale and too-short event only pays the second correction.
	if end.Sub(start) < minDuration {
		end = start.Add(clampDuration)
	}
	if start.Before(now) {
		start = now.Add(time.Hour)
		end = start.Add(time.Hour)
	}

	summary := stringParam(params, "summary")
	if summary == "" {
		summary = "Meeting"
	}

	return &CalendarEventDraft{
		Summary:     summary,
		Description: stringParam(params, "description"),
		Location:    stringParam(params, "location"),
		Start:       start,
		End:         end,
		Timezone:    loc.String(),
		IsAllDay:    isAllDay,
		Recurrence:  stringParam(params, "recurrence"),
	}
}

// defaultStart is the chain applied when the resolver yields nothing:
// construct from cross-check components when month+day are present
// (rolling to next year if the result is already past), else tomorrow at
// the current clock time.
func (b *Builder) defaultStart(comps aitime.DateComponents, now time.Time, loc *time.Location) time.Time {
	if comps.HasDate() {
		hour := 12
		if comps.Hour != nil {
			hour = *comps.Hour
		}
		minute := 0
		if comps.Minute != nil {
			minute = *comps.Minute
		}
		t := time.Date(now.Year(), time.Month(*comps.Month), *comps.Day, hour, minute, 0, 0, loc)
		if t.Before(now) {
			t = time.Date(now.Year()+1, time.Month(*comps.Month), *comps.Day, hour, minute, 0, 0, loc)
		}
		return t
	}
	return now.Add(24 * time.Hour)
}

func stringParam(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func boolParam(params map[string]any, key string) bool {
	v, ok := params[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}
