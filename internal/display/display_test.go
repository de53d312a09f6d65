package display

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var green = color.RGBA{G: 0xDD, A: 0xFF}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestGroupAppendPop(t *testing.T) {
	var g Group
	a := &Label{Text: "a"}
	b := &Label{Text: "b"}
	g.Append(a)
	g.Append(b)
	if g.Len() != 2 {
		t.Fatalf("Len = %d", g.Len())
	}
	d, ok := g.Pop()
	if !ok || d != b {
		t.Fatalf("Pop = %v, %v; want last appended", d, ok)
	}
	if g.Len() != 1 {
		t.Fatalf("Len after Pop = %d", g.Len())
	}
	g.Pop()
	if _, ok := g.Pop(); ok {
		t.Fatal("Pop on empty group reported ok")
	}
}

func TestLineHorizontal(t *testing.T) {
	s := NewScreen(320, 240, color.Black)
	s.Root().Append(&Line{X0: 0, Y0: 50, X1: 319, Y1: 50, Color: green})
	img := s.Frame()
	if got := countColor(img, green); got != 320 {
		t.Fatalf("line pixels = %d, want 320", got)
	}
	if img.RGBAAt(160, 50) != green {
		t.Fatal("pixel on line not set")
	}
}

func TestLabelDrawsInk(t *testing.T) {
	face, err := LoadFace("", 14)
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	s := NewScreen(120, 60, color.Black)
	s.Root().Append(&Label{X: 5, Y: 20, Text: "09:30\nStandup", Color: green, Face: face, LineSpacing: 0.75})
	img := s.Frame()

	top, bottom := 0, 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{A: 0xFF}) {
				continue
			}
			if y < 25 {
				top++
			} else {
				bottom++
			}
		}
	}
	if top == 0 || bottom == 0 {
		t.Fatalf("expected ink on both lines, got top=%d bottom=%d", top, bottom)
	}
}

func TestLoadFaceMissingFile(t *testing.T) {
	if _, err := LoadFace(filepath.Join(t.TempDir(), "nope.ttf"), 14); err == nil {
		t.Fatal("expected error")
	}
}

type recordSink struct {
	frames int
	err    error
}

func (r *recordSink) Show(image.Image) error {
	r.frames++
	return r.err
}

func TestShowReachesEverySink(t *testing.T) {
	bad := &recordSink{err: errors.New("panel busy")}
	good := &recordSink{}
	s := NewScreen(10, 10, color.Black, bad, good)

	err := s.Show()
	if err == nil {
		t.Fatal("expected joined error")
	}
	if bad.frames != 1 || good.frames != 1 {
		t.Fatalf("frames = %d/%d, want 1/1", bad.frames, good.frames)
	}
}

func TestPNGSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "preview.png")
	s := NewScreen(32, 16, color.Black, &PNGSink{Path: path})
	s.Root().Append(&Line{X0: 0, Y0: 0, X1: 31, Y1: 0, Color: green})

	if err := s.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	r, g, _, _ := img.At(5, 0).RGBA()
	if r != 0 || g>>8 != 0xDD {
		t.Fatalf("pixel = %v", img.At(5, 0))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %v", entries)
	}
}
