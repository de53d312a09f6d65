package timewin

import (
	"testing"
	"time"
)

func TestCurrentWindow(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 14:05:09 UTC is 07:05:09 in Los Angeles (PDT).
	clock := func() time.Time { return time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC) }
	r := NewResolverWithClock(la, clock)

	w := r.Current(1)

	if w.Min != "2026-10-19T07:05:09Z" {
		t.Errorf("Min = %q", w.Min)
	}
	if w.Max != "2026-10-20T00:00:00Z" {
		t.Errorf("Max = %q", w.Max)
	}
}

func TestBetweenOverflowsMonthAndYear(t *testing.T) {
	cases := []struct {
		now  time.Time
		days int
		want string
	}{
		{time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), 1, "2026-02-01T00:00:00Z"},
		{time.Date(2026, 12, 31, 8, 0, 0, 0, time.UTC), 1, "2027-01-01T00:00:00Z"},
		{time.Date(2028, 2, 28, 8, 0, 0, 0, time.UTC), 1, "2028-02-29T00:00:00Z"},
		{time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), 7, "2026-10-26T00:00:00Z"},
	}
	for _, c := range cases {
		got := Between(c.now, c.days).Max
		if got != c.want {
			t.Errorf("Between(%v, %d).Max = %q, want %q", c.now, c.days, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	w := Between(time.Date(2026, 10, 19, 7, 5, 9, 0, time.UTC), 1)
	start, err := Parse(w.Min)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2026, 10, 19, 7, 5, 9, 0, time.UTC)) {
		t.Fatalf("Parse(%q) = %v", w.Min, start)
	}
}

func TestLoadLocationFallback(t *testing.T) {
	if LoadLocation("") != time.Local {
		t.Error("empty name should be Local")
	}
	if LoadLocation("Nowhere/Atlantis") != time.Local {
		t.Error("unknown name should be Local")
	}
}
