// Package display is a small retained-mode scene: drawables are appended to
// a group, and a screen composes the group into a frame for its sinks.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Drawable is anything that can paint itself onto a frame.
type Drawable interface {
	Draw(dst draw.Image)
}

// Label is a block of text. (X, Y) is the left edge and vertical middle of
// the first line; further lines (separated by "\n") are advanced by the
// face height scaled by LineSpacing.
type Label struct {
	X, Y        int
	Text        string
	Color       color.Color
	Face        font.Face
	LineSpacing float64
}

// Draw implements Drawable.
func (l *Label) Draw(dst draw.Image) {
	if l.Text == "" {
		return
	}
	face := l.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	spacing := l.LineSpacing
	if spacing <= 0 {
		spacing = 1
	}

	m := face.Metrics()
	baseline := fixed.I(l.Y) + (m.Ascent-m.Descent)/2
	step := fixed.Int26_6(float64(m.Height) * spacing)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.Color),
		Face: face,
	}
	for i, line := range strings.Split(l.Text, "\n") {
		d.Dot = fixed.Point26_6{X: fixed.I(l.X), Y: baseline + fixed.Int26_6(i)*step}
		d.DrawString(line)
	}
}

// Line is a one-pixel straight line between two points.
type Line struct {
	X0, Y0, X1, Y1 int
	Color          color.Color
}

// Draw implements Drawable (Bresenham).
func (l *Line) Draw(dst draw.Image) {
	x0, y0, x1, y1 := l.X0, l.Y0, l.X1, l.Y1
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		dst.Set(x0, y0, l.Color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
