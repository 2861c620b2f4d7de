package utils

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates (schedules, filters).
const DateLayout = "2006-01-02"

// ParseDate parses a plain calendar date. The zero time and an error are
// returned for anything that is not an exact YYYY-MM-DD value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseTimestamp accepts an RFC3339 timestamp and falls back to a plain date,
// which callers commonly send for backdated entries.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}
