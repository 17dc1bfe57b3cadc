package vs1053

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

// recTrigger is a PollTrigger that records arm and disarm calls.
type recTrigger struct {
	PollTrigger
	events []string
}

func (t *recTrigger) Arm() {
	t.events = append(t.events, "arm")
	t.PollTrigger.Arm()
}

func (t *recTrigger) Disarm() {
	t.events = append(t.events, "disarm")
	t.PollTrigger.Disarm()
}

func TestConfigure(t *testing.T) {
	d, chip := newTestDevice(t)
	if err := d.Configure(); err != nil {
		t.Fatalf("Configure: %s", err)
	}
	if chip.resets != 1 {
		t.Errorf("soft resets = %d, want 1", chip.resets)
	}
	if got := chip.regs[REG_CLOCKF]; got != CLOCKF_MULT_3_0 {
		t.Errorf("CLOCKF = 0x%04x, want 0x%04x", got, CLOCKF_MULT_3_0)
	}
	if got := chip.regs[REG_VOLUME]; got != 0x2828 {
		t.Errorf("VOLUME = 0x%04x, want 0x2828", got)
	}
	if chip.inReset {
		t.Error("chip left in hardware reset")
	}
}

func TestConfigureErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *fakeChip, d *Device)
		code  int
	}{
		{"wrong version", func(c *fakeChip, d *Device) { c.regs[REG_STATUS] = VER_VS1063 << 4 }, CodeVersion},
		{"no contact", func(c *fakeChip, d *Device) { c.stuck = map[uint8]uint16{REG_MODE: 0} }, CodeMode},
		{"clock not taken", func(c *fakeChip, d *Device) { c.stuck = map[uint8]uint16{REG_CLOCKF: 0} }, CodeClock},
		{"dreq stuck low", func(c *fakeChip, d *Device) {
			c.ready = func() bool { return false }
			d.cfg.ReadyTimeout = time.Millisecond
		}, CodeMode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, chip := newTestDevice(t)
			tc.setup(chip, d)
			err := d.Configure()
			ie, ok := err.(*InitError)
			if !ok {
				t.Fatalf("Configure() = %v, want *InitError", err)
			}
			if ie.Code != tc.code {
				t.Errorf("code = %d, want %d (%s)", ie.Code, tc.code, ie)
			}
			if !ie.Fatal() {
				t.Error("bring-up failure reported as non fatal")
			}
		})
	}
}

func TestReadyTimeoutIsReported(t *testing.T) {
	d, chip := newTestDevice(t)
	chip.ready = func() bool { return false }
	d.cfg.ReadyTimeout = time.Millisecond
	_, err := d.ReadRegister(REG_MODE)
	if !errors.Is(err, ErrReadyTimeout) {
		t.Fatalf("ReadRegister() error = %v, want ErrReadyTimeout", err)
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	d, chip := newTestDevice(t)
	if err := d.WriteRegister(REG_AICTRL0, 0xA55A); err != nil {
		t.Fatal(err)
	}
	got, err := d.ReadRegister(REG_AICTRL0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xA55A {
		t.Errorf("ReadRegister = 0x%04x, want 0xa55a", got)
	}
	if w := chip.writesTo(REG_AICTRL0); len(w) != 1 {
		t.Errorf("writes = %v", w)
	}
}

func TestRegisterAccessInReset(t *testing.T) {
	d, chip := newTestDevice(t)
	chip.regs[REG_AICTRL1] = 0x1234
	chip.inReset = true

	got, err := d.ReadRegister(REG_AICTRL1)
	if err != nil || got != 0 {
		t.Errorf("ReadRegister in reset = 0x%04x, %v, want 0, nil", got, err)
	}
	if err := d.WriteRegister(REG_AICTRL1, 0xFFFF); err != nil {
		t.Errorf("WriteRegister in reset: %s", err)
	}
	if len(chip.writes) != 0 {
		t.Errorf("bus was used in reset: %v", chip.writes)
	}
	if chip.regs[REG_AICTRL1] != 0x1234 {
		t.Error("register changed while in reset")
	}
}

func TestReadExtendedVerifies(t *testing.T) {
	tests := []struct {
		name  string
		seq   []uint16
		want  uint16
		reads int
	}{
		{"stable", []uint16{7, 7}, 7, 2},
		{"settles on third read", []uint16{7, 3, 7}, 7, 3},
		{"never agrees", []uint16{1, 2, 3, 4}, 1, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, chip := newTestDevice(t)
			chip.wramSeq[PARA_BYTE_RATE] = tc.seq
			got, err := d.ReadExtended(PARA_BYTE_RATE)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("ReadExtended = %d, want %d", got, tc.want)
			}
			if n := len(chip.writesTo(REG_WRAMADDR)); n != tc.reads {
				t.Errorf("reads = %d, want %d", n, tc.reads)
			}
		})
	}
}

func TestWriteExtended(t *testing.T) {
	d, chip := newTestDevice(t)
	if err := d.WriteExtended(PARA_PLAY_SPEED, 4); err != nil {
		t.Fatal(err)
	}
	if chip.wram[PARA_PLAY_SPEED] != 4 {
		t.Errorf("wram = %d, want 4", chip.wram[PARA_PLAY_SPEED])
	}
}

func TestRegisterAccessSuspendsArmedTrigger(t *testing.T) {
	d, chip := newTestDevice(t)
	trig := &recTrigger{}
	d.trig = trig

	armedDuringAccess := false
	chip.ready = func() bool {
		if trig.Armed() {
			armedDuringAccess = true
		}
		return true
	}

	trig.Arm()
	trig.events = nil
	if err := d.WriteRegister(REG_AICTRL2, 1); err != nil {
		t.Fatal(err)
	}
	if armedDuringAccess {
		t.Error("trigger armed during a control transaction")
	}
	if want := []string{"disarm", "arm"}; !equalStrings(trig.events, want) {
		t.Errorf("events = %v, want %v", trig.events, want)
	}

	// a disarmed trigger stays disarmed
	trig.Disarm()
	trig.events = nil
	if _, err := d.ReadRegister(REG_AICTRL2); err != nil {
		t.Fatal(err)
	}
	if len(trig.events) != 0 || trig.Armed() {
		t.Errorf("disarmed trigger touched: %v", trig.events)
	}
}

func TestVolumeIsRemembered(t *testing.T) {
	d, chip := newTestDevice(t)
	if err := d.SetVolume(10, 20); err != nil {
		t.Fatal(err)
	}
	if err := d.mute(); err != nil {
		t.Fatal(err)
	}
	if l, r := d.Volume(); l != 10 || r != 20 {
		t.Errorf("Volume = %d,%d after mute", l, r)
	}
	if err := d.unmute(); err != nil {
		t.Fatal(err)
	}
	want := []uint16{0x0A14, 0xFEFE, 0x0A14}
	if got := chip.writesTo(REG_VOLUME); !equalWords(got, want) {
		t.Errorf("volume writes = %04x, want %04x", got, want)
	}
}

func TestSwitchToMp3Mode(t *testing.T) {
	d, chip := newTestDevice(t)
	if err := d.SwitchToMp3Mode(); err != nil {
		t.Fatal(err)
	}
	if chip.wram[0xc017] != 3 || chip.wram[0xc019] != 0 {
		t.Errorf("gpio ddr=%d odata=%d", chip.wram[0xc017], chip.wram[0xc019])
	}
	if chip.resets != 1 {
		t.Errorf("resets = %d, want 1", chip.resets)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalWords(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// The address register auto increments, so an indirect read must not be
// split by another indirect access.
func TestExtendedAccessHoldsBus(t *testing.T) {
	d, chip := newTestDevice(t)
	chip.wram[0x1000] = 0xAAAA

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			d.WriteExtended(0x2000, 0x5555)
		}
	}()
	for i := 0; i < 500; i++ {
		v, err := d.ReadExtended(0x1000)
		if err != nil {
			t.Error(err)
			break
		}
		if v != 0xAAAA {
			t.Errorf("read %d returned 0x%04x, want 0xaaaa", i, v)
			break
		}
	}
	<-done
}
