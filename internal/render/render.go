// Package render lays out the agenda onto a display group.
//
// The group keeps a few persistent elements (header separator, date label and
// optionally a battery label). Every Render call removes exactly what the
// previous call added and appends the new rows on top.
package render

import (
	"image/color"
	"strings"
	"time"

	"golang.org/x/image/font"

	"portalcal/internal/display"
	"portalcal/internal/format"
	appLog "portalcal/internal/log"
	"portalcal/internal/model"
)

// Layout, in pixels, for a 320x240 screen.
const (
	headerLineY = 50
	headerX     = 10
	headerY     = 30

	rowX      = 7
	firstRowY = 70
	rowHeight = 40

	titleX24 = 76
	titleX12 = 88

	wrap24 = 28
	wrap12 = 25

	titleLineSpacing = 0.75
)

// NoEventsLabel is shown when the window holds no events.
const NoEventsLabel = "No events today"

// Options configures a Renderer.
type Options struct {
	Width     int
	Use24Hour bool

	TextColor   color.Color
	HeaderColor color.Color
	LineColor   color.Color

	HeaderFace font.Face
	EventFace  font.Face

	// Battery adds a persistent battery label at the right of the header.
	Battery bool
}

// Renderer owns the agenda's elements inside a display group.
type Renderer struct {
	group   *display.Group
	opts    Options
	header  *display.Label
	battery *display.Label
	added   int
}

// New appends the persistent header elements to group.
func New(group *display.Group, opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 320
	}
	r := &Renderer{group: group, opts: opts}

	group.Append(&display.Line{X0: 0, Y0: headerLineY, X1: opts.Width, Y1: headerLineY, Color: opts.LineColor})
	r.header = &display.Label{X: headerX, Y: headerY, Color: opts.HeaderColor, Face: opts.HeaderFace}
	group.Append(r.header)
	if opts.Battery {
		r.battery = &display.Label{X: opts.Width - 50, Y: headerY, Color: opts.HeaderColor, Face: opts.EventFace}
		group.Append(r.battery)
	}
	return r
}

// SetBattery updates the battery label text. It is a no-op when the
// renderer was built without one.
func (r *Renderer) SetBattery(text string) {
	if r.battery != nil {
		r.battery.Text = text
	}
}

// Render replaces the previous agenda with events, dated now.
func (r *Renderer) Render(now time.Time, events []model.Event) {
	r.header.Text = format.PrettyDate(now)

	for i := 0; i < r.added; i++ {
		r.group.Pop()
	}
	r.added = 0

	if len(events) == 0 {
		r.append(&display.Label{X: rowX, Y: firstRowY, Text: NoEventsLabel, Color: r.opts.TextColor, Face: r.opts.EventFace})
		return
	}

	titleX, wrapWidth := titleX24, wrap24
	if !r.opts.Use24Hour {
		titleX, wrapWidth = titleX12, wrap12
	}

	for i, ev := range events {
		y := firstRowY + i*rowHeight

		clock := format.AllDayLabel
		if !ev.AllDay() {
			var err error
			if clock, err = format.Clock(ev.Start, r.opts.Use24Hour); err != nil {
				appLog.Warn("render: unreadable event start", "start", ev.Start, "err", err)
				clock = "--:--"
			}
		}
		r.append(&display.Label{X: rowX, Y: y, Text: clock, Color: r.opts.TextColor, Face: r.opts.EventFace})
		r.append(&display.Label{
			X:           titleX,
			Y:           y,
			Text:        strings.Join(format.Wrap(ev.Title, wrapWidth), "\n"),
			Color:       r.opts.TextColor,
			Face:        r.opts.EventFace,
			LineSpacing: titleLineSpacing,
		})
	}
	appLog.Debug("agenda rendered", "events", len(events), "elements", r.added)
}

// Added returns how many elements the last Render appended.
func (r *Renderer) Added() int { return r.added }

func (r *Renderer) append(d display.Drawable) {
	r.group.Append(d)
	r.added++
}
