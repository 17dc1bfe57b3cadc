package vs1053

import (
	"time"
)

// EnableTestSineWave starts the chip's built-in sine test. freq is the
// SDI test byte, see the datasheet sine test table. Only allowed from Ready.
func (p *Player) EnableTestSineWave(freq uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return ErrInReset
	}
	if p.state != Ready {
		return ErrBusy
	}
	if err := p.codec.modifyRegister(REG_MODE, MODE_SM_TESTS, MODE_SM_TESTS); err != nil {
		return err
	}
	seq := SDI_SINE_START
	seq[3] = freq
	if err := p.codec.sendSDI(seq[:]); err != nil {
		return err
	}
	p.setState(TestingTone)
	return nil
}

func (p *Player) DisableTestSineWave() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return ErrInReset
	}
	if p.state != TestingTone {
		return nil
	}
	seq := SDI_SINE_STOP
	if err := p.codec.sendSDI(seq[:]); err != nil {
		return err
	}
	if err := p.codec.modifyRegister(REG_MODE, MODE_SM_TESTS, 0); err != nil {
		return err
	}
	p.setState(Ready)
	return nil
}

// MemoryTest runs the chip's memory self test and returns the raw HDAT0
// result, MEM_TEST_PASS on a healthy VS1053b. The chip is brought up again
// afterwards.
func (p *Player) MemoryTest() (uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return 0, ErrInReset
	}
	if p.state != Ready {
		return 0, ErrBusy
	}
	p.setState(TestingMemory)
	if err := p.codec.modifyRegister(REG_MODE, MODE_SM_TESTS, MODE_SM_TESTS); err != nil {
		p.setState(Ready)
		return 0, err
	}
	seq := SDI_MEM_TEST
	if err := p.codec.sendSDI(seq[:]); err != nil {
		p.setState(Ready)
		return 0, err
	}
	// the test takes 1100000 clock cycles
	p.sleep(250 * time.Millisecond)
	result, err := p.codec.sciRead(REG_HDAT0)
	if err != nil {
		p.setState(Ready)
		return 0, err
	}
	p.cfg.logf("vs1053: memory test 0x%04x", result)
	if err := p.bringUp(); err != nil {
		if ie, ok := err.(*InitError); !ok || ie.Fatal() {
			return result, err
		}
	}
	return result, nil
}
