package model

import "strings"

// Event is one agenda row as delivered by a calendar source.
//
// Start is kept verbatim: an RFC3339 date-time such as
// "2026-10-19T09:30:00-07:00" for timed events, or a plain date
// ("2026-10-19") for all-day events. Events are replaced wholesale every
// refresh and never mutated after construction.
type Event struct {
	Start string
	Title string
}

// AllDay reports whether Start carries no time-of-day component.
func (e Event) AllDay() bool {
	return e.Start != "" && !strings.Contains(e.Start, "T")
}
