package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2026-03-15 ")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	want := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v; want %v", got, want)
	}

	for _, bad := range []string{"15/03/2026", "2026-3-15", "yesterday", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", bad)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2026-03-15T09:30:00Z")
	if err != nil {
		t.Fatalf("RFC3339 input rejected: %v", err)
	}
	if ts.Hour() != 9 || ts.Minute() != 30 {
		t.Errorf("ParseTimestamp = %v; want 09:30 UTC", ts)
	}

	day, err := ParseTimestamp("2026-03-15")
	if err != nil {
		t.Fatalf("plain date fallback rejected: %v", err)
	}
	if !day.Equal(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date fallback = %v; want midnight UTC", day)
	}

	if _, err := ParseTimestamp("not-a-time"); err == nil {
		t.Error("garbage input accepted")
	}
}
