package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prevNow := now
	now = func() time.Time { return time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelInfo)
		now = prevNow
	})
	return &buf
}

func TestLineFormat(t *testing.T) {
	buf := capture(t)

	Info("fetching calendar events", "from", "2026-10-19T07:00:00Z", "count", 5)

	want := "2026-10-19T07:00:00.000000Z [INFO] fetching calendar events from=2026-10-19T07:00:00Z count=5\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestErrorPrependsErr(t *testing.T) {
	buf := capture(t)

	Error("token refresh failed", errors.New("invalid_grant"), "attempt", 1)

	if !strings.Contains(buf.String(), "[ERROR] token refresh failed err=invalid_grant attempt=1") {
		t.Fatalf("unexpected line %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("lower levels leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestQuotedValues(t *testing.T) {
	buf := capture(t)

	Info("event", "title", "Team sync", "empty", "")

	if !strings.Contains(buf.String(), `title="Team sync" empty=""`) {
		t.Fatalf("unexpected quoting: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"", LevelInfo, false},
		{"loud", LevelInfo, false},
	}
	for _, c := range cases {
		got, ok := ParseLevel(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseLevel(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
