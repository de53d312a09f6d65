package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	appLog "portalcal/internal/log"
)

// PNGSink writes each frame to Path, replacing it atomically so readers
// never observe a half-written preview.
type PNGSink struct {
	Path string
}

// Show implements Sink.
func (p *PNGSink) Show(img image.Image) error {
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("display: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".portalcal-preview-*.tmp")
	if err != nil {
		return fmt.Errorf("display: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("display: encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("display: close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("display: chmod: %w", err)
	}
	if err := os.Rename(tmpPath, p.Path); err != nil {
		return fmt.Errorf("display: rename: %w", err)
	}

	appLog.Debug("preview written", "path", p.Path)
	return nil
}
