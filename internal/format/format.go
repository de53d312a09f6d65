// Package format turns calendar values into the short strings that fit the
// agenda's fixed-size regions.
package format

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
)

// MaxTitleLines is how many wrapped lines a title may occupy; the rest is
// dropped.
const MaxTitleLines = 2

// AllDayLabel is shown in the time column for date-only events.
const AllDayLabel = "All day"

var errNoTime = errors.New("format: no time component")

// Clock renders the start time of an event.
//
// start is a calendar timestamp such as "2026-10-19T09:30:00-07:00" or
// "2026-10-19T16:30:00Z". The wall clock written in the string is used
// as-is; the offset is not applied. Date-only values yield AllDayLabel.
//
// 24-hour: "09:30". 12-hour: "9:30am"; hour 0 is "12:MMam" and hour 12 is
// "12:MMpm".
func Clock(start string, use24h bool) (string, error) {
	hour, minute, err := wallClock(start)
	if errors.Is(err, errNoTime) {
		return AllDayLabel, nil
	}
	if err != nil {
		return "", err
	}
	if use24h {
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d%s", h, minute, suffix), nil
}

func wallClock(start string) (hour, minute int, err error) {
	date, clock, ok := strings.Cut(strings.TrimSpace(start), "T")
	if !ok {
		if _, perr := time.Parse(time.DateOnly, date); perr != nil {
			return 0, 0, fmt.Errorf("format: bad date %q: %w", start, perr)
		}
		return 0, 0, errNoTime
	}

	// Drop the zone designator: "Z", "+hh:mm" or "-hh:mm".
	if i := strings.IndexAny(clock, "Z+-"); i >= 0 {
		clock = clock[:i]
	}
	// Fractional seconds are legal in RFC3339.
	if i := strings.IndexByte(clock, '.'); i >= 0 {
		clock = clock[:i]
	}

	t, perr := time.Parse(time.TimeOnly, clock)
	if perr != nil {
		return 0, 0, fmt.Errorf("format: bad time %q: %w", start, perr)
	}
	return t.Hour(), t.Minute(), nil
}

// PrettyDate renders the header, e.g. "Monday Oct.19, 2026 ".
func PrettyDate(t time.Time) string {
	return fmt.Sprintf("%s %s.%02d, %04d ", t.Weekday(), t.Format("Jan"), t.Day(), t.Year())
}

// Wrap breaks title into at most MaxTitleLines lines for a row width columns
// wide. The first line starts after a one-column gutter, so it holds at most
// width-1 cells; later lines use the full width. Words are never split at
// hyphens; a single word longer than the row is kept whole and overflows.
func Wrap(title string, width int) []string {
	title = strings.NewReplacer("\r", "", "\n", " ").Replace(title)
	words := strings.Fields(title)
	if len(words) == 0 {
		return nil
	}

	lines := wrapAt(words, width-1)
	first := lines[0]
	if rest := words[len(strings.Fields(first)):]; len(rest) > 0 {
		lines = append([]string{first}, wrapAt(rest, width)...)
	}

	if len(lines) > MaxTitleLines {
		lines = lines[:MaxTitleLines]
	}
	return lines
}

func wrapAt(words []string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	ww := wordwrap.NewWriter(limit)
	ww.Breakpoints = nil
	ww.KeepNewlines = false
	_, _ = ww.Write([]byte(strings.Join(words, " ")))
	_ = ww.Close()

	var out []string
	for _, l := range strings.Split(ww.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
