package timewin

import (
	"time"

	appLog "portalcal/internal/log"
)

// Layout is the timestamp format sent as timeMin/timeMax. The literal "Z"
// is appended to the local wall clock as-is; no offset conversion happens.
const Layout = "2006-01-02T15:04:05Z"

// Window bounds one calendar query.
type Window struct {
	Min string
	Max string
}

// Resolver turns the host clock into localized query bounds.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver builds a Resolver for the given IANA zone. An empty or unknown
// zone falls back to the host's local zone.
func NewResolver(timezone string) *Resolver {
	return &Resolver{loc: LoadLocation(timezone), now: time.Now}
}

// NewResolverWithClock is NewResolver with an injected clock.
func NewResolverWithClock(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Location returns the display zone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current wall clock in the display zone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Current returns [now, midnight of today+lookaheadDays]. Day overflow
// normalises into the following month or year.
func (r *Resolver) Current(lookaheadDays int) Window {
	now := r.Now()
	return Between(now, lookaheadDays)
}

// Between computes the window for an explicit instant.
func Between(now time.Time, lookaheadDays int) Window {
	cutoff := time.Date(now.Year(), now.Month(), now.Day()+lookaheadDays, 0, 0, 0, 0, now.Location())
	return Window{
		Min: now.Format(Layout),
		Max: cutoff.Format(Layout),
	}
}

// Parse reads a bound back into a time. Bounds carry a literal Z, so the
// result is in UTC, matching how the calendar API interprets them.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// LoadLocation resolves an IANA zone name, logging and falling back to
// time.Local when it is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
