package gcal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"portalcal/internal/model"
	"portalcal/internal/timewin"
)

var testWindow = timewin.Window{Min: "2026-10-19T07:05:09Z", Max: "2026-10-20T00:00:00Z"}

func newTestFetcher(t *testing.T, h http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.test", TokenType: "Bearer"})
	f, err := NewFetcher(context.Background(), ts, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func TestFetchSendsQueryAndParsesItems(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/primary/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.test" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		want := map[string]string{
			"maxResults":   "5",
			"timeMin":      testWindow.Min,
			"timeMax":      testWindow.Max,
			"orderBy":      "startTime",
			"singleEvents": "true",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"kind": "calendar#events",
			"items": [
				{"summary": "Standup", "start": {"dateTime": "2026-10-19T09:30:00-07:00"}},
				{"summary": "Offsite", "start": {"date": "2026-10-19"}}
			]
		}`))
	})

	got, err := f.Fetch(context.Background(), "primary", 5, testWindow)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []model.Event{
		{Start: "2026-10-19T09:30:00-07:00", Title: "Standup"},
		{Start: "2026-10-19", Title: "Offsite"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFetchEmptyIsNotAnError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind": "calendar#events", "items": []}`))
	})

	got, err := f.Fetch(context.Background(), "primary", 5, testWindow)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty slice", got)
	}
}

func TestFetchCapsAtMaxEvents(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"summary": "a", "start": {"dateTime": "2026-10-19T09:00:00Z"}},
			{"summary": "b", "start": {"dateTime": "2026-10-19T10:00:00Z"}},
			{"summary": "c", "start": {"dateTime": "2026-10-19T11:00:00Z"}}
		]}`))
	})

	got, err := f.Fetch(context.Background(), "primary", 2, testWindow)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Title != "b" {
		t.Fatalf("got %+v", got)
	}
}

func TestFetchAPIErrorIsFatal(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "Not Found", "errors": [{"reason": "notFound"}]}}`))
	})

	_, err := f.Fetch(context.Background(), "missing", 5, testWindow)
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("err = %v, want ErrAPI", err)
	}
}

func TestFetchTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/"
	srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.test"})
	f, err := NewFetcher(context.Background(), ts, nil, option.WithEndpoint(endpoint))
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Fetch(context.Background(), "primary", 5, testWindow)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrAPI) {
		t.Fatalf("transport failure classified as API error: %v", err)
	}
}
