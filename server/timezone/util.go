// Package timezone provides timezone utilities for the assistant.
//
// This package handles timezone parsing and validation to ensure
// consistent time handling across the scheduling pipeline.
package timezone

import (
	"fmt"
	"regexp"
	"time"
)

// areaLocationPattern matches IANA zone names of the Area/Location shape,
// e.g. "Asia/Dhaka" or "America/New_York".
var areaLocationPattern = regexp.MustCompile(`^[A-Za-z_]+/[A-Za-z_]+$`)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Dhaka").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// ResolveOrDefault resolves a caller-supplied zone string for an event.
// Only Area/Location shaped, loadable names are accepted; anything else
// silently falls back to the supplied default zone.
func ResolveOrDefault(tz string, def *time.Location) *time.Location {
	if def == nil {
		def = time.UTC
	}
	if !areaLocationPattern.MatchString(tz) {
		return def
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return def
	}
	return loc
}
