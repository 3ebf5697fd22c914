// Package aitime resolves natural-language datetime expressions into
// concrete, timezone-aware instants.
package aitime

import (
	"strconv"
)

// DateComponents is a sparse cross-check signal extracted from a
// datetime expression. Any field may be nil, meaning "unconstrained".
// It is used only transiently to validate or reconstruct a resolved
// instant, never as a primary result.
type DateComponents struct {
	Month  *int // 1-12
	Day    *int // 1-31
	Hour   *int // 0-23
	Minute *int // 0-59
}

// Empty reports whether no component was extracted.
func (c DateComponents) Empty() bool {
	return c.Month == nil && c.Day == nil && c.Hour == nil && c.Minute == nil
}

// HasDate reports whether both month and day are present.
func (c DateComponents) HasDate() bool {
	return c.Month != nil && c.Day != nil
}

// ComponentsFromMap builds DateComponents from a loose extraction
// mapping. Out-of-range or non-numeric values are dropped, not errors.
func ComponentsFromMap(m map[string]any) DateComponents {
	var c DateComponents
	c.Month = intField(m, "month", 1, 12)
	c.Day = intField(m, "day", 1, 31)
	c.Hour = intField(m, "hour", 0, 23)
	c.Minute = intField(m, "minute", 0, 59)
	return c
}

func intField(m map[string]any, key string, min, max int) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}

	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		parsed, err := strconv.Atoi(t)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}

	if n < min || n > max {
		return nil
	}
	return &n
}
