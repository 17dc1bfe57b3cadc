package vs1053

import (
	"tinygo.org/x/drivers"
)

// Bus is the wiring between the host and the VS10xx: one SPI bus shared by
// the control (XCS) and data (XDCS) chip selects, the DREQ line and the
// XRESET line.
type Bus interface {
	// Transfer exchanges one byte full duplex.
	Transfer(b byte) (byte, error)
	// Tx writes w and reads into r, either may be nil.
	Tx(w, r []byte) error

	SelectControl(on bool)
	SelectData(on bool)

	// Ready reports the DREQ level.
	Ready() bool

	// InReset reports whether XRESET is held low.
	InReset() bool
	HoldReset(on bool)
}

// Pin is the part of machine.Pin the driver needs.
type Pin interface {
	Get() bool
	Set(value bool)
}

type baudRateSetter interface {
	SetBaudRate(br uint32) error
}

// PinBus is a Bus over a drivers.SPI and four GPIOs. Chip selects and
// XRESET are active low.
type PinBus struct {
	spi      drivers.SPI
	csPin    Pin
	dcsPin   Pin
	rstPin   Pin
	dreqPin  Pin
	slowFreq uint32
	fastFreq uint32
	current  uint32
}

// NewPinBus returns a PinBus. rstPin may be nil when XRESET is not wired.
// When spi can change its baud rate, control reads run at slow and all
// writes at fast.
func NewPinBus(spi drivers.SPI, csPin, dcsPin, rstPin, dreqPin Pin, slow, fast uint32) *PinBus {
	b := &PinBus{
		spi:      spi,
		csPin:    csPin,
		dcsPin:   dcsPin,
		rstPin:   rstPin,
		dreqPin:  dreqPin,
		slowFreq: slow,
		fastFreq: fast,
	}
	csPin.Set(true)
	dcsPin.Set(true)
	return b
}

func (b *PinBus) Transfer(c byte) (byte, error) {
	return b.spi.Transfer(c)
}

func (b *PinBus) Tx(w, r []byte) error {
	return b.spi.Tx(w, r)
}

func (b *PinBus) SelectControl(on bool) {
	if on {
		b.setRate(b.slowFreq)
	}
	b.csPin.Set(!on)
}

func (b *PinBus) SelectData(on bool) {
	if on {
		b.setRate(b.fastFreq)
	}
	b.dcsPin.Set(!on)
}

// UseFastRate switches an already selected control transaction to the write
// rate once the read/write instruction is known.
func (b *PinBus) UseFastRate() {
	b.setRate(b.fastFreq)
}

func (b *PinBus) setRate(hz uint32) {
	if hz == 0 || hz == b.current {
		return
	}
	if s, ok := b.spi.(baudRateSetter); ok {
		if s.SetBaudRate(hz) == nil {
			b.current = hz
		}
	}
}

func (b *PinBus) Ready() bool {
	return b.dreqPin.Get()
}

func (b *PinBus) InReset() bool {
	if b.rstPin == nil {
		return false
	}
	return !b.rstPin.Get()
}

func (b *PinBus) HoldReset(on bool) {
	if b.rstPin != nil {
		b.rstPin.Set(!on)
	}
}
