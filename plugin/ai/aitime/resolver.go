package aitime

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/donna-ai/donna/plugin/ai"
)

// isoPattern matches the first ISO-8601 datetime substring in a reply,
// optionally followed by Z or a signed HH:MM offset. Text around the
// match is discarded.
var isoPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[+-]\d{2}:\d{2}|Z)?`)

// ErrNoResolution is returned when neither extraction pass yielded
// anything usable. Callers apply a coarser default.
var ErrNoResolution = fmt.Errorf("no datetime could be resolved")

// Policy holds the reconciliation heuristics. They are empirical
// robustness knobs, not hard invariants, so they stay configurable.
type Policy struct {
	// HourTolerance is the allowed hour drift between the primary result
	// and the component extraction, absorbing AM/PM ambiguity.
	HourTolerance int
	// DefaultHour fills a missing hour during deterministic fallback.
	DefaultHour int
	// DefaultMinute fills a missing minute during deterministic fallback.
	DefaultMinute int
	// RollToNextOccurrence rolls a past fallback date to next year, but
	// only when the supplied month/day already lies before today's.
	RollToNextOccurrence bool
}

// DefaultPolicy returns the reconciliation defaults.
func DefaultPolicy() Policy {
	return Policy{
		HourTolerance:        1,
		DefaultHour:          12,
		DefaultMinute:        0,
		RollToNextOccurrence: true,
	}
}

// Resolver converts a natural-language datetime expression plus a target
// timezone into a concrete instant. The primary ISO-conversion pass is
// treated as untrusted: an independent component extraction cross-checks
// it, and a deterministic reconstruction takes over when the model
// disagrees with itself or fails outright.
type Resolver struct {
	extractor *ai.Extractor
	policy    Policy
	now       func() time.Time
}

// NewResolver creates a Resolver on top of a structured extractor.
func NewResolver(extractor *ai.Extractor, policy Policy) *Resolver {
	return &Resolver{
		extractor: extractor,
		policy:    policy,
		now:       time.Now,
	}
}

// WithNow returns a Resolver using the given clock. For tests.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	return &Resolver{
		extractor: r.extractor,
		policy:    r.policy,
		now:       now,
	}
}

// ExtractComponents runs the component pass: a sparse month/day/hour/
// minute extraction used as the cross-check oracle. Failures are
// absorbed into an empty result.
func (r *Resolver) ExtractComponents(ctx context.Context, raw string) DateComponents {
	if strings.TrimSpace(raw) == "" {
		return DateComponents{}
	}

	result, err := r.extractor.Extract(ctx, componentInstruction, raw)
	if err != nil {
		slog.Warn("component extraction failed",
			"input", truncate(raw, 60),
			"error", err)
		return DateComponents{}
	}

	comps := ComponentsFromMap(result)
	slog.Debug("extracted date components",
		"input", truncate(raw, 60),
		"has_date", comps.HasDate())
	return comps
}

// Resolve runs both extraction passes and reconciles them.
func (r *Resolver) Resolve(ctx context.Context, raw string, loc *time.Location) (time.Time, error) {
	comps := r.ExtractComponents(ctx, raw)
	return r.ResolveWith(ctx, raw, comps, loc)
}

// ResolveWith reconciles the primary ISO pass against already-extracted
// components. Callers that need the components afterwards (for their own
// fallback chain) extract once and pass them in.
func (r *Resolver) ResolveWith(ctx context.Context, raw string, comps DateComponents, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, ErrNoResolution
	}
	if loc == nil {
		loc = time.Local
	}

	primary, err := r.extractPrimary(ctx, raw, loc)
	if err == nil {
		if mismatch := r.crossValidate(primary, comps); mismatch == "" {
			return primary, nil
		} else {
			slog.Warn("primary datetime failed cross-validation",
				"input", truncate(raw, 60),
				"primary", primary.Format(time.RFC3339),
				"mismatch", mismatch)
		}
	} else {
		slog.Warn("primary datetime extraction failed",
			"input", truncate(raw, 60),
			"error", err)
	}

	if comps.Empty() {
		return time.Time{}, ErrNoResolution
	}

	fallback := r.reconstruct(comps, loc)
	slog.Debug("deterministic datetime fallback",
		"input", truncate(raw, 60),
		"result", fallback.Format(time.RFC3339))
	return fallback, nil
}

// extractPrimary runs the strict ISO pass and parses the first ISO
// substring from the reply.
func (r *Resolver) extractPrimary(ctx context.Context, raw string, loc *time.Location) (time.Time, error) {
	now := r.now().In(loc)
	instruction := isoInstruction(now, loc)

	reply, err := r.extractor.ExtractText(ctx, instruction, "Parse exactly: "+raw)
	if err != nil {
		return time.Time{}, err
	}

	iso := isoPattern.FindString(reply)
	if iso == "" {
		return time.Time{}, fmt.Errorf("no ISO datetime in reply %q", truncate(reply, 60))
	}

	// With an explicit offset (or Z) the string is an absolute instant;
	// without one it is wall-clock time already in the target timezone.
	if strings.HasSuffix(iso, "Z") || len(iso) > 19 {
		t, err := time.Parse(time.RFC3339, iso)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q: %w", iso, err)
		}
		return t.In(loc), nil
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05", iso, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", iso, err)
	}
	return t, nil
}

// crossValidate compares the primary result against any present
// component fields: month and day must match exactly, the hour within
// the configured tolerance. Returns a description of the first mismatch,
// or "" when the primary result stands.
func (r *Resolver) crossValidate(primary time.Time, comps DateComponents) string {
	if comps.Month != nil && *comps.Month != int(primary.Month()) {
		return fmt.Sprintf("month: expected %d, got %d", *comps.Month, int(primary.Month()))
	}
	if comps.Day != nil && *comps.Day != primary.Day() {
		return fmt.Sprintf("day: expected %d, got %d", *comps.Day, primary.Day())
	}
	if comps.Hour != nil {
		diff := *comps.Hour - primary.Hour()
		if diff < 0 {
			diff = -diff
		}
		if diff > r.policy.HourTolerance {
			return fmt.Sprintf("hour: expected %d, got %d", *comps.Hour, primary.Hour())
		}
	}
	return ""
}

// reconstruct builds an instant directly from the component extraction:
// current year, extracted month/day (current month/day when absent),
// default hour/minute for missing time fields. A strictly-past result
// rolls to next year only when the supplied month/day itself lies before
// today's, i.e. the date reads as "next occurrence". An explicit past
// time-of-day today is accepted as-is.
func (r *Resolver) reconstruct(comps DateComponents, loc *time.Location) time.Time {
	now := r.now().In(loc)

	month := int(now.Month())
	if comps.Month != nil {
		month = *comps.Month
	}
	day := now.Day()
	if comps.Day != nil {
		day = *comps.Day
	}
	hour := r.policy.DefaultHour
	if comps.Hour != nil {
		hour = *comps.Hour
	}
	minute := r.policy.DefaultMinute
	if comps.Minute != nil {
		minute = *comps.Minute
	}

	t := time.Date(now.Year(), time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Before(now) && r.policy.RollToNextOccurrence {
		beforeToday := month < int(now.Month()) || (month == int(now.Month()) && day < now.Day())
		if beforeToday {
			t = time.Date(now.Year()+1, time.Month(month), day, hour, minute, 0, 0, loc)
		}
	}
	return t
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// componentInstruction asks for the sparse cross-check signal.
const componentInstruction = `Extract date components from this text.
Return a JSON with keys: month (1-12), day (1-31), hour (0-23), minute (0-59).
If any component is not specified, omit that key.`

// isoInstruction asks for a single normalized ISO-8601 datetime. The
// model is explicitly forbidden from substituting today/tomorrow for a
// stated date, which is its dominant observed failure mode.
func isoInstruction(now time.Time, loc *time.Location) string {
	return fmt.Sprintf(`Convert natural language datetime to ISO 8601 with timezone offset.
Current date: %s in %s.
IMPORTANT: Preserve the EXACT date and time specified by the user.
Key rules:
1. Return in format: YYYY-MM-DDTHH:MM:SS with a numeric UTC offset
2. "All day" means 00:00:00-23:59:59
3. Relative dates use the %s timezone
4. DO NOT change dates specified by the user
5. DO NOT default to today/tomorrow if a date is specified
6. If "7 May 5pm" is specified, use exactly May 7th at 5:00 PM
7. Return only the ISO datetime string with no explanation`,
		now.Format("2006-01-02"), loc.String(), loc.String())
}
