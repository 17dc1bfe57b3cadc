/*!
 * @file Adafruit_VS1053.cpp
 *
 * @mainpage Adafruit VS1053 Library
 *
 * @section intro_sec Introduction
 *
 * This is a library for the Adafruit VS1053 Codec Breakout
 *
 * Designed specifically to work with the Adafruit VS1053 Codec Breakout
 * ----> https://www.adafruit.com/products/1381
 *
 * Adafruit invests time and resources providing this open source code,
 * please support Adafruit and open-source hardware by purchasing
 * products from Adafruit!
 *
 * @section author Author
 *
 * Written by Limor Fried/Ladyada for Adafruit Industries.
 *
 * @section license License
 *
 * BSD license, all text above must be included in any redistribution
 */

/*
 * ported to TinyGo by Elehobica, 2022
 */

package vs1053

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Device is the register level driver of a VS1053 decoder.
type Device struct {
	bus   Bus
	busMu sync.Mutex
	cfg   Config
	// trig is suspended around every control transaction while armed,
	// rearm decides afterwards whether it may run again
	trig  Trigger
	rearm func()
	sleep func(time.Duration)

	volLeft, volRight uint8
}

func New(bus Bus, cfg Config) *Device {
	return &Device{
		bus:      bus,
		cfg:      cfg,
		sleep:    time.Sleep,
		volLeft:  cfg.VolumeLeft,
		volRight: cfg.VolumeRight,
	}
}

// Configure resets the chip and checks it answers as a VS1053 running on
// the 3.0x clock multiplier.
func (d *Device) Configure() error {
	version, err := d.begin()
	if err != nil {
		return err
	}
	if version != VER_VS1053 {
		return initError(CodeVersion, errors.Errorf("vs1053 version: %d is not %d", version, VER_VS1053))
	}
	return nil
}

func (d *Device) softReset() error {
	if err := d.sciWrite(REG_MODE, MODE_DEFAULT|MODE_SM_RESET); err != nil {
		return err
	}
	d.sleep(100 * time.Millisecond)
	return nil
}

func (d *Device) reset() error {
	// hardware reset
	d.bus.HoldReset(true)
	d.sleep(100 * time.Millisecond)
	d.bus.HoldReset(false)
	d.bus.SelectControl(false)
	d.bus.SelectData(false)
	d.sleep(100 * time.Millisecond)
	return d.softReset()
}

func (d *Device) begin() (version uint8, err error) {
	if err := d.reset(); err != nil {
		return 0, initError(CodeMode, err)
	}

	mode, err := d.sciRead(REG_MODE)
	if err != nil {
		return 0, initError(CodeMode, err)
	}
	if mode != MODE_DEFAULT {
		return 0, initError(CodeMode, errors.Errorf("mode 0x%04x, want 0x%04x", mode, MODE_DEFAULT))
	}

	status, err := d.sciRead(REG_STATUS)
	if err != nil {
		return 0, initError(CodeVersion, err)
	}
	version = uint8(status>>4) & 0x0F

	// CLOCKF
	//  b15-13: SC_MULT (multiply XTALI): 0: x1.0, 1: x2.0, 2: x2.5, 3: x3.0, 4: x3.5, 5: x4.0, 6: x4.5, 7: x5.0
	//  b12-11: SC_ADD  (f/w multiplier): 0: no modification, 1: x1.0, 2: x1.5, 3: x2.0
	//  b10: 0: SC_FREQ: 0 when 12.288 MHz operation
	if err := d.sciWrite(REG_CLOCKF, CLOCKF_MULT_3_0); err != nil {
		return version, initError(CodeClock, err)
	}
	clock, err := d.sciRead(REG_CLOCKF)
	if err != nil {
		return version, initError(CodeClock, err)
	}
	if clock != CLOCKF_MULT_3_0 {
		return version, initError(CodeClock, errors.Errorf("clockf 0x%04x, want 0x%04x", clock, CLOCKF_MULT_3_0))
	}

	if err := d.SetVolume(d.volLeft, d.volRight); err != nil {
		return version, initError(CodeClock, err)
	}
	d.cfg.logf("vs1053: version %d, mode 0x%04x, clockf 0x%04x", version, mode, clock)
	return version, nil
}

// SwitchToMp3Mode drives GPIO0/1 so boards strapped for MIDI boot decode MP3.
func (d *Device) SwitchToMp3Mode() error {
	if err := d.WriteExtended(0xc017, 3); err != nil {
		return err
	}
	if err := d.WriteExtended(0xc019, 0); err != nil {
		return err
	}
	d.sleep(100 * time.Millisecond)
	return d.softReset()
}

// InReset reports whether XRESET holds the chip in hardware reset. Register
// accesses are no-ops returning zero while it does.
func (d *Device) InReset() bool {
	return d.bus.InReset()
}

// SetVolume accepts values between 0 and 255 for left and right.
// maximum volume is 0x0000 and total silence is 0xFEFE.
// Setting SCI_VOL to 0xFFFF will activate analog powerdown mode.
func (d *Device) SetVolume(left, right uint8) error {
	if err := d.sciWrite(REG_VOLUME, uint16(left)<<8|uint16(right)); err != nil {
		return err
	}
	d.volLeft, d.volRight = left, right
	return nil
}

// Volume returns the last attenuation written with SetVolume.
func (d *Device) Volume() (left, right uint8) {
	return d.volLeft, d.volRight
}

// mute writes near silence without forgetting the user volume.
func (d *Device) mute() error {
	return d.sciWrite(REG_VOLUME, 0xFEFE)
}

func (d *Device) unmute() error {
	return d.sciWrite(REG_VOLUME, uint16(d.volLeft)<<8|uint16(d.volRight))
}

func (d *Device) ReadRegister(addr uint8) (uint16, error) {
	return d.sciRead(addr)
}

func (d *Device) WriteRegister(addr uint8, data uint16) error {
	return d.sciWrite(addr, data)
}

// ReadExtended reads a word of X/Y/I memory through REG_WRAMADDR. The
// memory is not dual ported, so the first value read is confirmed by up to
// three more reads and returned even if none of them agrees.
func (d *Device) ReadExtended(addr uint16) (uint16, error) {
	first, err := d.wramRead(addr)
	if err != nil {
		return 0, err
	}
	for i := 0; i < 3; i++ {
		again, err := d.wramRead(addr)
		if err != nil {
			return first, err
		}
		if again == first {
			break
		}
	}
	return first, nil
}

func (d *Device) WriteExtended(addr, data uint16) error {
	if d.bus.InReset() {
		return nil
	}
	defer d.suspendRefill()()

	d.busMu.Lock()
	defer d.busMu.Unlock()
	if err := d.writeLocked(REG_WRAMADDR, addr); err != nil {
		return err
	}
	return d.writeLocked(REG_WRAM, data)
}

// wramRead keeps the bus across both steps, the address register auto
// increments on every access.
func (d *Device) wramRead(addr uint16) (uint16, error) {
	if d.bus.InReset() {
		return 0, nil
	}
	defer d.suspendRefill()()

	d.busMu.Lock()
	defer d.busMu.Unlock()
	if err := d.writeLocked(REG_WRAMADDR, addr); err != nil {
		return 0, err
	}
	return d.readLocked(REG_WRAM)
}

// modifyRegister replaces the mask bits of a register in one bus hold.
func (d *Device) modifyRegister(addr uint8, mask, value uint16) error {
	if d.bus.InReset() {
		return nil
	}
	defer d.suspendRefill()()

	d.busMu.Lock()
	defer d.busMu.Unlock()
	v, err := d.readLocked(addr)
	if err != nil {
		return err
	}
	return d.writeLocked(addr, v&^mask|value&mask)
}

// suspendRefill disarms the trigger when it is armed and returns the func
// that lets it run again.
func (d *Device) suspendRefill() (resume func()) {
	t := d.trig
	if t == nil || !t.Armed() {
		return func() {}
	}
	t.Disarm()
	if d.rearm != nil {
		return d.rearm
	}
	return t.Arm
}

func (d *Device) sciRead(addr uint8) (data uint16, err error) {
	if d.bus.InReset() {
		return 0, nil
	}
	defer d.suspendRefill()()

	d.busMu.Lock()
	defer d.busMu.Unlock()
	return d.readLocked(addr)
}

func (d *Device) sciWrite(addr uint8, data uint16) error {
	if d.bus.InReset() {
		return nil
	}
	defer d.suspendRefill()()

	d.busMu.Lock()
	defer d.busMu.Unlock()
	return d.writeLocked(addr, data)
}

// readLocked and writeLocked are single SCI transactions, busMu held.
func (d *Device) readLocked(addr uint8) (uint16, error) {
	if err := d.waitReady(); err != nil {
		return 0, errors.Wrapf(err, "read register 0x%02x", addr)
	}
	d.bus.SelectControl(true)
	defer d.bus.SelectControl(false)
	if _, err := d.bus.Transfer(SCI_READ); err != nil {
		return 0, errors.Wrap(err, "sci read")
	}
	if _, err := d.bus.Transfer(addr); err != nil {
		return 0, errors.Wrap(err, "sci read")
	}
	data0, err := d.bus.Transfer(0xFF)
	if err != nil {
		return 0, errors.Wrap(err, "sci read")
	}
	data1, err := d.bus.Transfer(0xFF)
	if err != nil {
		return 0, errors.Wrap(err, "sci read")
	}
	if err := d.waitReady(); err != nil {
		return 0, errors.Wrapf(err, "read register 0x%02x", addr)
	}
	return uint16(data0)<<8 | uint16(data1), nil
}

type fastRateSwitcher interface {
	UseFastRate()
}

func (d *Device) writeLocked(addr uint8, data uint16) error {
	if err := d.waitReady(); err != nil {
		return errors.Wrapf(err, "write register 0x%02x", addr)
	}
	d.bus.SelectControl(true)
	defer d.bus.SelectControl(false)
	if f, ok := d.bus.(fastRateSwitcher); ok {
		f.UseFastRate()
	}
	for _, b := range [4]byte{SCI_WRITE, addr, uint8(data >> 8), uint8(data & 0xff)} {
		if _, err := d.bus.Transfer(b); err != nil {
			return errors.Wrap(err, "sci write")
		}
	}
	if err := d.waitReady(); err != nil {
		return errors.Wrapf(err, "write register 0x%02x", addr)
	}
	return nil
}

func (d *Device) readyForData() bool {
	return d.bus.Ready()
}

// waitReady spins on DREQ for at most cfg.ReadyTimeout.
func (d *Device) waitReady() error {
	if d.bus.Ready() {
		return nil
	}
	deadline := time.Now().Add(d.cfg.ReadyTimeout)
	for !d.bus.Ready() {
		if time.Now().After(deadline) {
			return ErrReadyTimeout
		}
	}
	return nil
}

// playData sends one chunk over SDI. DREQ high guarantees room for 32
// bytes, so the burst does not wait between bytes.
func (d *Device) playData(buf []byte) error {
	d.busMu.Lock()
	defer d.busMu.Unlock()
	d.bus.SelectData(true)
	defer d.bus.SelectData(false)
	return d.bus.Tx(buf, nil)
}

// sendFill pushes n copies of fill over SDI, waiting for DREQ before each.
func (d *Device) sendFill(fill byte, n int) error {
	d.busMu.Lock()
	defer d.busMu.Unlock()
	d.bus.SelectData(true)
	defer d.bus.SelectData(false)
	for i := 0; i < n; i++ {
		if err := d.waitReady(); err != nil {
			return errors.Wrap(err, "send end fill")
		}
		if _, err := d.bus.Transfer(fill); err != nil {
			return errors.Wrap(err, "send end fill")
		}
	}
	return nil
}

// sendSDI writes a test command sequence over SDI.
func (d *Device) sendSDI(seq []byte) error {
	if d.bus.InReset() {
		return nil
	}
	if err := d.waitReady(); err != nil {
		return err
	}
	return d.playData(seq)
}
