package ics

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "portalcal/internal/log"
)

// maxInstancesPerEvent stops runaway rules (e.g. FREQ=MINUTELY) from
// flooding a window.
const maxInstancesPerEvent = 500

// instance is one concrete occurrence inside the query window.
type instance struct {
	UID     string
	Summary string
	Start   time.Time
	AllDay  bool
}

// expand turns parsed VEVENTs into single instances overlapping
// [rangeStart, rangeEnd), applying RRULE, EXDATE and RECURRENCE-ID
// overrides, sorted by start time.
func expand(events []vevent, rangeStart, rangeEnd time.Time) []instance {
	bases := make(map[string][]vevent)
	overrides := make(map[string][]vevent)
	var order []string

	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := bases[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	var out []instance
	consumed := make(map[overrideKey]bool)
	for _, uid := range order {
		for _, ev := range bases[uid] {
			if ev.RRule == "" {
				if overlaps(ev.Start, ev.End, rangeStart, rangeEnd) {
					out = append(out, toInstance(ev, ev.Start))
				}
				continue
			}
			out = append(out, expandRecurring(ev, overrides[uid], rangeStart, rangeEnd, consumed)...)
		}
	}

	// Overrides not matched to a generated instance: moved into the window
	// from another day, or orphaned from their series.
	for uid, ovs := range overrides {
		for _, ov := range ovs {
			if consumed[keyOf(uid, *ov.RecurrenceID)] {
				continue
			}
			if overlaps(ov.Start, ov.End, rangeStart, rangeEnd) {
				out = append(out, toInstance(ov, ov.Start))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func expandRecurring(ev vevent, overrides []vevent, rangeStart, rangeEnd time.Time, consumed map[overrideKey]bool) []instance {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		appLog.Error("ics: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	// Widen the lower bound by the duration so instances already in progress
	// at rangeStart are included.
	from := rangeStart.Add(-dur).In(ev.Start.Location())
	to := rangeEnd.In(ev.Start.Location())

	starts := set.Between(from, to, true)
	if len(starts) > maxInstancesPerEvent {
		appLog.Warn("ics: truncated recurring event", "uid", ev.UID, "cap", maxInstancesPerEvent)
		starts = starts[:maxInstancesPerEvent]
	}

	out := make([]instance, 0, len(starts))
	for _, s := range starts {
		if ov, ok := findOverride(overrides, s); ok {
			consumed[keyOf(ev.UID, s)] = true
			if overlaps(ov.Start, ov.End, rangeStart, rangeEnd) {
				out = append(out, toInstance(ov, ov.Start))
			}
			continue
		}
		if overlaps(s, s.Add(dur), rangeStart, rangeEnd) {
			out = append(out, toInstance(ev, s))
		}
	}
	return out
}

// overrideKey identifies one instance of a series by UID and RECURRENCE-ID.
type overrideKey struct {
	uid string
	at  int64
}

func keyOf(uid string, at time.Time) overrideKey {
	return overrideKey{uid: uid, at: at.Unix()}
}

func findOverride(overrides []vevent, start time.Time) (vevent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID != nil && ov.RecurrenceID.Equal(start) {
			return ov, true
		}
	}
	return vevent{}, false
}

func toInstance(ev vevent, start time.Time) instance {
	return instance{UID: ev.UID, Summary: ev.Summary, Start: start, AllDay: ev.AllDay}
}

// overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
// Zero-length events count when they start inside the range.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Equal(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
