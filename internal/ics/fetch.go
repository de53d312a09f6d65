package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	appLog "portalcal/internal/log"
)

// ErrFeed marks a feed that answered with a non-2xx status. Like a Calendar
// API error it is treated as fatal; retrying a 404 or 403 changes nothing.
var ErrFeed = errors.New("ics: feed error")

// maxBody bounds how much of a feed is read.
const maxBody = 8 << 20

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("ics: feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	appLog.Debug("ics fetch start", "url", redactURL(url))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ics: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appLog.Error("ics fetch non-OK", errors.New(resp.Status), "url", redactURL(url), "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", ErrFeed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("ics: read body: %w", err)
	}
	return body, nil
}

// redactURL keeps only scheme and host of a feed URL; private ICS links embed
// their secret in the path or query.
//
//	https://calendar.google.com/calendar/ical/x/private-abc/basic.ics
//	-> https://calendar.google.com/...(redacted)
func redactURL(u string) string {
	const suffix = "/...(redacted)"

	_, rest, ok := strings.Cut(u, "://")
	if !ok {
		return "ics://...(redacted)"
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, "?")
	return u[:len(u)-len(rest)] + host + suffix
}
