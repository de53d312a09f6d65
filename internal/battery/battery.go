// Package battery reads a PiSugar-style fuel gauge over I2C for the agenda's
// battery indicator.
package battery

import (
	"context"
	"fmt"
	"runtime"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Register map of the PiSugar3 controller.
const (
	regVoltageHigh = 0x22
	regVoltageLow  = 0x23
	regPercent     = 0x2A
)

// Status is one fuel gauge sample.
type Status struct {
	// Percent is the battery level in 0–100%.
	Percent int
	// VoltageMv is the battery voltage in millivolts, if known.
	VoltageMv int
}

// Reader abstracts how battery information is obtained.
type Reader interface {
	Read(ctx context.Context) (Status, error)
}

// i2cReader talks to the controller on busName at addr.
type i2cReader struct {
	busName string
	addr    uint16
}

// NewI2CReader constructs an I2C-backed Reader. busName "" selects the
// default bus (/dev/i2c-1 on a Raspberry Pi). The bus is opened per read.
func NewI2CReader(busName string, addr uint16) Reader {
	return &i2cReader{busName: busName, addr: addr}
}

// Read implements Reader.
func (r *i2cReader) Read(_ context.Context) (Status, error) {
	if runtime.GOOS != "linux" {
		return Status{}, fmt.Errorf("battery: i2c unavailable on %s", runtime.GOOS)
	}
	if _, err := host.Init(); err != nil {
		return Status{}, err
	}

	bus, err := i2creg.Open(r.busName)
	if err != nil {
		return Status{}, err
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: r.addr}
	return readStatus(dev.Tx)
}

// readStatus reads voltage and percentage through tx, one register per
// transaction.
func readStatus(tx func(w, r []byte) error) (Status, error) {
	readReg := func(reg byte) (byte, error) {
		buf := []byte{0}
		if err := tx([]byte{reg}, buf); err != nil {
			return 0, fmt.Errorf("battery: read reg 0x%02x: %w", reg, err)
		}
		return buf[0], nil
	}

	high, err := readReg(regVoltageHigh)
	if err != nil {
		return Status{}, err
	}
	low, err := readReg(regVoltageLow)
	if err != nil {
		return Status{}, err
	}
	pct, err := readReg(regPercent)
	if err != nil {
		return Status{}, err
	}
	if pct > 100 {
		pct = 100
	}

	return Status{
		Percent:   int(pct),
		VoltageMv: int(uint16(high)<<8 | uint16(low)),
	}, nil
}

// Label formats a status for the screen: "87%", or "--%" when the read
// failed.
func Label(s Status, err error) string {
	if err != nil {
		return "--%"
	}
	return fmt.Sprintf("%d%%", s.Percent)
}
