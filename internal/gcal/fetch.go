package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	appLog "portalcal/internal/log"
	"portalcal/internal/model"
	"portalcal/internal/timewin"
)

// ErrAPI marks an error object returned by the Calendar API. It is not
// retried: a bad calendar ID or revoked access will not fix itself.
var ErrAPI = errors.New("gcal: calendar API error")

// Fetcher lists events from one Google calendar.
type Fetcher struct {
	svc *calendar.Service
}

// NewFetcher builds a Fetcher whose requests carry the bearer token from ts.
// base supplies the transport and timeout; nil uses http.DefaultClient.
// Extra options (e.g. option.WithEndpoint in tests) are appended.
func NewFetcher(ctx context.Context, ts oauth2.TokenSource, base *http.Client, opts ...option.ClientOption) (*Fetcher, error) {
	if base == nil {
		base = http.DefaultClient
	}
	client := &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base.Transport},
		Timeout:   base.Timeout,
	}
	all := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("gcal: create calendar service: %w", err)
	}
	return &Fetcher{svc: svc}, nil
}

// Fetch returns up to maxEvents single-instance events inside w, ordered by
// start time. An empty result is not an error.
func (f *Fetcher) Fetch(ctx context.Context, calendarID string, maxEvents int, w timewin.Window) ([]model.Event, error) {
	appLog.Info("fetching calendar events", "from", w.Min, "to", w.Max)

	resp, err := f.svc.Events.List(calendarID).
		MaxResults(int64(maxEvents)).
		TimeMin(w.Min).
		TimeMax(w.Max).
		OrderBy("startTime").
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			appLog.Error("calendar API returned an error", err, "code", gerr.Code, "calendar_id", calendarID)
			return nil, fmt.Errorf("%w: %v", ErrAPI, err)
		}
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}

	if len(resp.Items) == 0 {
		appLog.Info("no events scheduled for today")
		return []model.Event{}, nil
	}

	events := make([]model.Event, 0, min(len(resp.Items), maxEvents))
	for _, item := range resp.Items {
		if len(events) == maxEvents {
			break
		}
		events = append(events, toEvent(item))
	}
	return events, nil
}

func toEvent(item *calendar.Event) model.Event {
	ev := model.Event{Title: item.Summary}
	if item.Start != nil {
		ev.Start = item.Start.DateTime
		if ev.Start == "" {
			ev.Start = item.Start.Date
		}
	}
	return ev
}
