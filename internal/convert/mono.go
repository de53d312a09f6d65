// Package convert turns rendered agenda frames into 1-bit frames for an
// e-paper panel.
package convert

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Mono scales src into dst and thresholds every pixel to black or white.
//
// Behavior:
//
//   - A landscape src drawn onto a portrait dst (or the reverse) is rotated
//     90 degrees clockwise first.
//   - src is scaled to fill dst with ApproxBiLinear.
//   - Pixels with luma below 128 become ink (black), the rest paper (white).
//   - When invert is set the result is flipped, so a light-on-dark layout
//     comes out as dark text on white paper.
//   - Transparent pixels (alpha < 128) are always paper.
func Mono(dst draw.Image, src image.Image, invert bool) {
	db := dst.Bounds()
	sb := src.Bounds()

	if landscape(sb) != landscape(db) {
		src = rotateCW(src)
		sb = src.Bounds()
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, db.Dx(), db.Dy()))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, sb, draw.Src, nil)

	for y := 0; y < db.Dy(); y++ {
		for x := 0; x < db.Dx(); x++ {
			c := scaled.NRGBAAt(x, y)
			if c.A < 128 {
				dst.Set(db.Min.X+x, db.Min.Y+y, color.White)
				continue
			}
			if isInk(c) != invert {
				dst.Set(db.Min.X+x, db.Min.Y+y, color.Black)
			} else {
				dst.Set(db.Min.X+x, db.Min.Y+y, color.White)
			}
		}
	}
}

// IsDark reports whether c reads as a dark background.
func IsDark(c color.Color) bool {
	return isInk(color.NRGBAModel.Convert(c).(color.NRGBA))
}

func isInk(c color.NRGBA) bool {
	// Luma (perceptual brightness).
	y := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	return y < 128
}

func landscape(r image.Rectangle) bool {
	return r.Dx() > r.Dy()
}

// rotateCW returns src rotated 90 degrees clockwise.
func rotateCW(src image.Image) *image.NRGBA {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.Set(x, y, src.At(sb.Min.X+y, sb.Max.Y-1-x))
		}
	}
	return dst
}
