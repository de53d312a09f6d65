package display

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	appLog "portalcal/internal/log"
)

// Sink receives every composed frame.
type Sink interface {
	Show(img image.Image) error
}

// Screen owns the root group and pushes frames to its sinks.
type Screen struct {
	bounds     image.Rectangle
	background color.Color
	root       *Group
	sinks      []Sink
}

// NewScreen creates a width x height screen cleared to bg.
func NewScreen(width, height int, bg color.Color, sinks ...Sink) *Screen {
	return &Screen{
		bounds:     image.Rect(0, 0, width, height),
		background: bg,
		root:       &Group{},
		sinks:      sinks,
	}
}

// Root returns the group that Show composes.
func (s *Screen) Root() *Group { return s.root }

// Frame composes the background and root group into a new image.
func (s *Screen) Frame() *image.RGBA {
	img := image.NewRGBA(s.bounds)
	draw.Draw(img, img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	s.root.Draw(img)
	return img
}

// Show composes one frame and hands it to every sink. A failing sink does
// not stop the others; their errors are joined.
func (s *Screen) Show() error {
	frame := s.Frame()
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Show(frame); err != nil {
			appLog.Error("display: sink failed", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
