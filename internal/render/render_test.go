package render

import (
	"image/color"
	"testing"
	"time"

	"portalcal/internal/display"
	"portalcal/internal/model"
)

var now = time.Date(2026, 10, 19, 0, 5, 9, 0, time.UTC)

func newRenderer(use24 bool) (*display.Group, *Renderer) {
	g := &display.Group{}
	r := New(g, Options{Use24Hour: use24, TextColor: color.White, HeaderColor: color.White, LineColor: color.White})
	return g, r
}

func labelAt(t *testing.T, g *display.Group, i int) *display.Label {
	t.Helper()
	l, ok := g.At(i).(*display.Label)
	if !ok {
		t.Fatalf("element %d is %T, want *display.Label", i, g.At(i))
	}
	return l
}

func TestRenderAddsTwoPerEvent(t *testing.T) {
	g, r := newRenderer(true)
	persistent := g.Len()

	events := []model.Event{
		{Start: "2026-10-19T09:30:00-07:00", Title: "Standup"},
		{Start: "2026-10-19T13:00:00-07:00", Title: "Quarterly all-hands planning and roadmap review meeting"},
		{Start: "2026-10-19", Title: "Offsite"},
	}
	r.Render(now, events)

	if r.Added() != 6 || g.Len() != persistent+6 {
		t.Fatalf("added = %d, len = %d", r.Added(), g.Len())
	}

	if got := labelAt(t, g, persistent).Text; got != "09:30" {
		t.Errorf("first time = %q", got)
	}
	title := labelAt(t, g, persistent+3)
	if title.Text != "Quarterly all-hands\nplanning and roadmap review" {
		t.Errorf("wrapped title = %q", title.Text)
	}
	if title.X != titleX24 || title.Y != firstRowY+rowHeight || title.LineSpacing != titleLineSpacing {
		t.Errorf("title position = (%d,%d) spacing %v", title.X, title.Y, title.LineSpacing)
	}
	if got := labelAt(t, g, persistent+4).Text; got != "All day" {
		t.Errorf("all-day time = %q", got)
	}
}

func TestRenderEmptyShowsSingleLabel(t *testing.T) {
	g, r := newRenderer(true)
	persistent := g.Len()

	r.Render(now, []model.Event{})
	if r.Added() != 1 || g.Len() != persistent+1 {
		t.Fatalf("added = %d, len = %d", r.Added(), g.Len())
	}
	l := labelAt(t, g, persistent)
	if l.Text != NoEventsLabel || l.X != rowX || l.Y != firstRowY {
		t.Fatalf("label = %+v", l)
	}
}

func TestRenderRemovesExactlyPreviousElements(t *testing.T) {
	g, r := newRenderer(false)
	persistent := g.Len()

	r.Render(now, []model.Event{{Start: "2026-10-19T09:00:00Z", Title: "a"}, {Start: "2026-10-19T10:00:00Z", Title: "b"}})
	r.Render(now, nil)
	if g.Len() != persistent+1 {
		t.Fatalf("after empty render len = %d, want %d", g.Len(), persistent+1)
	}

	// The "No events today" label must not linger once events return.
	r.Render(now, []model.Event{{Start: "2026-10-19T15:00:00Z", Title: "c"}})
	if g.Len() != persistent+2 {
		t.Fatalf("len = %d, want %d", g.Len(), persistent+2)
	}
	if got := labelAt(t, g, persistent).Text; got != "3:00pm" {
		t.Errorf("12h time = %q", got)
	}
	if got := labelAt(t, g, persistent+1).X; got != titleX12 {
		t.Errorf("12h title x = %d", got)
	}
}

func TestRenderUpdatesHeader(t *testing.T) {
	g, r := newRenderer(true)
	r.Render(now, nil)
	if got := labelAt(t, g, 1).Text; got != "Monday Oct.19, 2026 " {
		t.Fatalf("header = %q", got)
	}
}

func TestBatteryLabelIsPersistent(t *testing.T) {
	g := &display.Group{}
	r := New(g, Options{Battery: true})
	if g.Len() != 3 {
		t.Fatalf("persistent elements = %d, want 3", g.Len())
	}
	r.SetBattery("87%")
	r.Render(now, nil)
	r.Render(now, nil)
	if got := labelAt(t, g, 2).Text; got != "87%" {
		t.Fatalf("battery label = %q", got)
	}
}
