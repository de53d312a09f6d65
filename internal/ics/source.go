package ics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	appLog "portalcal/internal/log"
	"portalcal/internal/model"
	"portalcal/internal/timewin"
)

// Source serves agenda events from a single iCalendar feed, for calendars
// that only publish a (private) ICS address.
type Source struct {
	url    string
	client *http.Client
	loc    *time.Location
}

// NewSource builds a Source. Timed starts are rendered in loc; a nil client
// uses http.DefaultClient.
func NewSource(url string, client *http.Client, loc *time.Location) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	if loc == nil {
		loc = time.Local
	}
	return &Source{url: url, client: client, loc: loc}
}

// Fetch returns up to maxEvents instances inside w ordered by start, the same
// contract as the Calendar API fetcher with singleEvents=true. calendarID is
// ignored: the feed URL identifies the calendar.
func (s *Source) Fetch(ctx context.Context, _ string, maxEvents int, w timewin.Window) ([]model.Event, error) {
	rangeStart, err := timewin.Parse(w.Min)
	if err != nil {
		return nil, fmt.Errorf("ics: window min: %w", err)
	}
	rangeEnd, err := timewin.Parse(w.Max)
	if err != nil {
		return nil, fmt.Errorf("ics: window max: %w", err)
	}
	// The window carries local wall-clock values behind a "Z" suffix.
	rangeStart, rangeEnd = wallIn(rangeStart, s.loc), wallIn(rangeEnd, s.loc)

	appLog.Info("fetching calendar events", "from", w.Min, "to", w.Max, "source", redactURL(s.url))

	body, err := fetch(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	parsed, err := parse(body, func(err error) {
		appLog.Warn("ics: skipping VEVENT", "err", err, "url", redactURL(s.url))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrFeed, err)
	}

	instances := expand(parsed, rangeStart, rangeEnd)
	if len(instances) == 0 {
		appLog.Info("no events scheduled for today")
		return []model.Event{}, nil
	}
	if len(instances) > maxEvents {
		instances = instances[:maxEvents]
	}

	events := make([]model.Event, 0, len(instances))
	for _, in := range instances {
		events = append(events, s.toEvent(in))
	}
	return events, nil
}

func (s *Source) toEvent(in instance) model.Event {
	if in.AllDay {
		return model.Event{Start: in.Start.Format(time.DateOnly), Title: in.Summary}
	}
	return model.Event{Start: in.Start.In(s.loc).Format(time.RFC3339), Title: in.Summary}
}

func wallIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
