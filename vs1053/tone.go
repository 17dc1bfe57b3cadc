package vs1053

// SCI_BASS fields
const (
	bassTrebleAmpShift  = 12 // signed, 1.5 dB steps
	bassTrebleFreqShift = 8  // 1 kHz steps
	bassBassAmpShift    = 4  // 1 dB steps
	bassBassFreqShift   = 0  // 10 Hz steps
)

func (d *Device) bassNibble(shift uint) (uint8, error) {
	v, err := d.sciRead(REG_BASS)
	if err != nil {
		return 0, err
	}
	return uint8(v>>shift) & 0x0F, nil
}

func (d *Device) setBassNibble(shift uint, n uint8) error {
	return d.modifyRegister(REG_BASS, 0x0F<<shift, uint16(n&0x0F)<<shift)
}

// TrebleFrequency returns the treble lower limit in Hz.
func (d *Device) TrebleFrequency() (uint16, error) {
	n, err := d.bassNibble(bassTrebleFreqShift)
	return uint16(n) * 1000, err
}

// SetTrebleFrequency sets the treble lower limit, 1000..15000 Hz.
func (d *Device) SetTrebleFrequency(hz uint16) error {
	n := clamp(int(hz/1000), 1, 15)
	return d.setBassNibble(bassTrebleFreqShift, uint8(n))
}

// TrebleAmplitude returns the treble boost in 1.5 dB steps, -8..7.
func (d *Device) TrebleAmplitude() (int8, error) {
	n, err := d.bassNibble(bassTrebleAmpShift)
	return int8(n<<4) >> 4, err
}

func (d *Device) SetTrebleAmplitude(amp int8) error {
	n := clamp(int(amp), -8, 7)
	return d.setBassNibble(bassTrebleAmpShift, uint8(n))
}

// BassFrequency returns the bass lower limit in Hz.
func (d *Device) BassFrequency() (uint16, error) {
	n, err := d.bassNibble(bassBassFreqShift)
	return uint16(n) * 10, err
}

// SetBassFrequency sets the bass lower limit, 20..150 Hz.
func (d *Device) SetBassFrequency(hz uint16) error {
	n := clamp(int(hz/10), 2, 15)
	return d.setBassNibble(bassBassFreqShift, uint8(n))
}

// BassAmplitude returns the bass enhancement in dB, 0..15.
func (d *Device) BassAmplitude() (uint8, error) {
	return d.bassNibble(bassBassAmpShift)
}

func (d *Device) SetBassAmplitude(amp uint8) error {
	n := clamp(int(amp), 0, 15)
	return d.setBassNibble(bassBassAmpShift, uint8(n))
}

// PlaySpeed returns the fast forward factor, 1 is normal speed.
func (d *Device) PlaySpeed() (uint16, error) {
	return d.ReadExtended(PARA_PLAY_SPEED)
}

func (d *Device) SetPlaySpeed(speed uint16) error {
	return d.WriteExtended(PARA_PLAY_SPEED, speed)
}

// EarSpeaker returns the spatial processing level 0 (off) to 3.
func (d *Device) EarSpeaker() (uint8, error) {
	m, err := d.sciRead(REG_MODE)
	if err != nil {
		return 0, err
	}
	var level uint8
	// the two bits are not adjacent
	if m&MODE_SM_EARSPKLO != 0 {
		level |= 0x01
	}
	if m&MODE_SM_EARSPKHI != 0 {
		level |= 0x02
	}
	return level, nil
}

func (d *Device) SetEarSpeaker(level uint8) error {
	var v uint16
	if level&0x01 != 0 {
		v |= MODE_SM_EARSPKLO
	}
	if level&0x02 != 0 {
		v |= MODE_SM_EARSPKHI
	}
	return d.modifyRegister(REG_MODE, MODE_SM_EARSPKLO|MODE_SM_EARSPKHI, v)
}

// DifferentialOutput reports whether the left channel is inverted.
func (d *Device) DifferentialOutput() (bool, error) {
	m, err := d.sciRead(REG_MODE)
	return m&MODE_SM_DIFF != 0, err
}

func (d *Device) SetDifferentialOutput(on bool) error {
	var v uint16
	if on {
		v = MODE_SM_DIFF
	}
	return d.modifyRegister(REG_MODE, MODE_SM_DIFF, v)
}

// MonoOutput needs the composite patch 1.7 or later to be loaded.
func (d *Device) MonoOutput() (bool, error) {
	v, err := d.ReadExtended(PARA_MONO_OUTPUT)
	return v&0x0001 != 0, err
}

func (d *Device) SetMonoOutput(on bool) error {
	v, err := d.ReadExtended(PARA_MONO_OUTPUT)
	if err != nil {
		return err
	}
	v &^= 0x0001
	if on {
		v |= 0x0001
	}
	return d.WriteExtended(PARA_MONO_OUTPUT, v)
}

// AudioInfo is the decoder's view of the current stream.
type AudioInfo struct {
	HDAT0, HDAT1 uint16
	DecodeTime   uint16 // seconds
	ByteRate     uint16 // bytes per second
}

func (d *Device) AudioInfo() (info AudioInfo, err error) {
	if info.HDAT0, err = d.sciRead(REG_HDAT0); err != nil {
		return info, err
	}
	if info.HDAT1, err = d.sciRead(REG_HDAT1); err != nil {
		return info, err
	}
	if info.DecodeTime, err = d.sciRead(REG_DECODETIME); err != nil {
		return info, err
	}
	info.ByteRate, err = d.ReadExtended(PARA_BYTE_RATE)
	return info, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
