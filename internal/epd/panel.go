// Package epd drives a Waveshare 2.13" v4 e-paper HAT over SPI using
// periph.io. The agenda frame is converted to 1 bit per pixel and the panel
// is put to sleep between refreshes.
package epd

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"

	"portalcal/internal/convert"
	appLog "portalcal/internal/log"
)

// hat is the subset of the waveshare device the panel uses.
type hat interface {
	Init() error
	Clear(c color.Color) error
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Sleep() error
	Halt() error
	Bounds() image.Rectangle
}

// Panel is a display sink backed by the e-paper HAT.
type Panel struct {
	dev    hat
	port   io.Closer
	invert bool
	asleep bool
}

// Open initialises the host drivers, opens the default SPI port and wakes
// the panel. invert should be set when the layout is light-on-dark.
func Open(spiPort string, invert bool) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("epd: host init: %w", err)
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("epd: open spi %q: %w", spiPort, err)
	}

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("epd: new hat: %w", err)
	}

	p, err := newPanel(dev, port, invert)
	if err != nil {
		port.Close()
		return nil, err
	}
	appLog.Info("epd panel ready", "bounds", dev.Bounds().String())
	return p, nil
}

func newPanel(dev hat, port io.Closer, invert bool) (*Panel, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("epd: init: %w", err)
	}
	if err := dev.Clear(color.White); err != nil {
		return nil, fmt.Errorf("epd: clear: %w", err)
	}
	return &Panel{dev: dev, port: port, invert: invert}, nil
}

// Show implements display.Sink: wake, convert, draw, sleep.
func (p *Panel) Show(img image.Image) error {
	if p.asleep {
		if err := p.dev.Init(); err != nil {
			return fmt.Errorf("epd: wake: %w", err)
		}
		p.asleep = false
	}

	frame := image1bit.NewVerticalLSB(p.dev.Bounds())
	convert.Mono(frame, img, p.invert)

	if err := p.dev.Draw(p.dev.Bounds(), frame, image.Point{}); err != nil {
		return fmt.Errorf("epd: draw: %w", err)
	}
	return p.Sleep()
}

// Sleep puts the panel into deep sleep; the next Show wakes it.
func (p *Panel) Sleep() error {
	if p.asleep {
		return nil
	}
	if err := p.dev.Sleep(); err != nil {
		return fmt.Errorf("epd: sleep: %w", err)
	}
	p.asleep = true
	return nil
}

// Close halts the device and releases the SPI port.
func (p *Panel) Close() error {
	haltErr := p.dev.Halt()
	var closeErr error
	if p.port != nil {
		closeErr = p.port.Close()
	}
	if haltErr != nil {
		return fmt.Errorf("epd: halt: %w", haltErr)
	}
	return closeErr
}
