package model

import "testing"

func TestAllDay(t *testing.T) {
	cases := map[string]bool{
		"2026-10-19":                true,
		"2026-10-19T09:30:00-07:00": false,
		"2026-10-19T16:30:00Z":      false,
		"":                          false,
	}
	for start, want := range cases {
		if got := (Event{Start: start}).AllDay(); got != want {
			t.Errorf("AllDay(%q) = %v, want %v", start, got, want)
		}
	}
}
