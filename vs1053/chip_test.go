package vs1053

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type regWrite struct {
	addr uint8
	val  uint16
}

// fakeChip simulates the SCI and SDI side of a VS1053b.
type fakeChip struct {
	mu sync.Mutex

	ctl, dat bool
	txn      []byte
	readVal  uint16

	regs     [16]uint16
	wram     map[uint16]uint16
	wramAddr uint16
	// wramSeq overrides successive reads of one address
	wramSeq map[uint16][]uint16

	ready   func() bool
	inReset bool

	data    []byte
	bursts  int
	writes  []regWrite
	resets  int
	cancels int

	// cancelAfter is the mode read after a cancel request that first sees
	// SM_CANCEL cleared, 0 and 1 both clear on the first read, -1 never
	cancelAfter   int
	cancelPending int

	// limit makes DREQ drop once this many SDI burst bytes are buffered,
	// 0 means the chip always has room
	limit   int
	pending int
	misses  int
	// cancelAt is the SDI byte count when cancel was last requested
	cancelAt int
	// stuck overrides what control register reads return
	stuck map[uint8]uint16

	transferErr error
	// onTransfer runs before each byte exchange, outside the chip lock
	onTransfer func()
}

func newFakeChip() *fakeChip {
	c := &fakeChip{
		wram:    map[uint16]uint16{},
		wramSeq: map[uint16][]uint16{},
		ready:   func() bool { return true },
	}
	c.regs[REG_MODE] = MODE_SM_SDINEW
	c.regs[REG_STATUS] = VER_VS1053 << 4
	c.wram[PARA_END_FILL_BYTE] = 0x00AB
	return c
}

func (c *fakeChip) Transfer(b byte) (byte, error) {
	if c.onTransfer != nil {
		c.onTransfer()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transferErr != nil {
		return 0, c.transferErr
	}
	if c.dat {
		c.data = append(c.data, b)
		return 0xFF, nil
	}
	if !c.ctl {
		return 0xFF, nil
	}
	c.txn = append(c.txn, b)
	switch len(c.txn) {
	case 3:
		if c.txn[0] == SCI_READ {
			c.readVal = c.readReg(c.txn[1])
			return uint8(c.readVal >> 8), nil
		}
	case 4:
		if c.txn[0] == SCI_READ {
			return uint8(c.readVal), nil
		}
		if c.txn[0] == SCI_WRITE {
			c.writeReg(c.txn[1], uint16(c.txn[2])<<8|uint16(c.txn[3]))
		}
	}
	return 0xFF, nil
}

func (c *fakeChip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transferErr != nil {
		return c.transferErr
	}
	if c.dat {
		c.data = append(c.data, w...)
		c.pending += len(w)
		c.bursts++
	}
	return nil
}

func (c *fakeChip) SelectControl(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctl = on
	c.txn = c.txn[:0]
}

func (c *fakeChip) SelectData(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dat = on
}

// Ready drops DREQ while the simulated buffer is full. A caller spinning on
// it sees the buffer play out after a while.
func (c *fakeChip) Ready() bool {
	c.mu.Lock()
	full := c.limit > 0 && c.pending >= c.limit
	if full {
		c.misses++
		if c.misses > 1000 {
			c.pending, c.misses = 0, 0
			full = false
		}
	}
	c.mu.Unlock()
	return !full && c.ready()
}

// drain lets the decoder play out its buffer.
func (c *fakeChip) drain() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending, c.misses = 0, 0
}

func (c *fakeChip) burstCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bursts
}

func (c *fakeChip) InReset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inReset
}

func (c *fakeChip) HoldReset(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inReset = on
}

func (c *fakeChip) readReg(addr uint8) uint16 {
	if v, ok := c.stuck[addr]; ok {
		return v
	}
	switch addr {
	case REG_WRAM:
		a := c.wramAddr
		c.wramAddr++
		if seq := c.wramSeq[a]; len(seq) > 0 {
			c.wramSeq[a] = seq[1:]
			return seq[0]
		}
		return c.wram[a]
	case REG_MODE:
		if c.regs[REG_MODE]&MODE_SM_CANCEL != 0 {
			if c.cancelPending > 0 {
				c.cancelPending--
			}
			if c.cancelPending == 0 {
				c.regs[REG_MODE] &^= MODE_SM_CANCEL
			}
		}
		return c.regs[REG_MODE]
	}
	return c.regs[addr&0x0F]
}

func (c *fakeChip) writeReg(addr uint8, v uint16) {
	c.writes = append(c.writes, regWrite{addr, v})
	switch addr {
	case REG_WRAMADDR:
		c.wramAddr = v
	case REG_WRAM:
		c.wram[c.wramAddr] = v
		c.wramAddr++
	case REG_MODE:
		if v&MODE_SM_RESET != 0 {
			c.resets++
			v &^= MODE_SM_RESET | MODE_SM_CANCEL
		}
		if v&MODE_SM_CANCEL != 0 && c.regs[REG_MODE]&MODE_SM_CANCEL == 0 {
			c.cancels++
			c.cancelPending = c.cancelAfter
			c.cancelAt = len(c.data)
		}
		c.regs[REG_MODE] = v
	default:
		c.regs[addr&0x0F] = v
	}
}

func (c *fakeChip) writesTo(addr uint8) []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var vals []uint16
	for _, w := range c.writes {
		if w.addr == addr {
			vals = append(vals, w.val)
		}
	}
	return vals
}

func (c *fakeChip) sdi() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.data...)
}

func (c *fakeChip) clearLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.bursts = 0
	c.writes = nil
	c.pending = 0
}

// memSource is an in-memory Source that counts what is done to it.
type memSource struct {
	data   []byte
	pos    int64
	reads  int
	closed bool
	seeks  []int64
	// failAt makes reads at or past this offset fail, 0 disables
	failAt int64
}

var errMedia = errors.New("media read error")

func (s *memSource) Read(buf []byte) (int, error) {
	s.reads++
	if s.failAt > 0 && s.pos >= s.failAt {
		return 0, errMedia
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(buf, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *memSource) SeekAbsolute(off int64) error {
	if off < 0 || off > int64(len(s.data)) {
		return errors.Errorf("seek %d out of range", off)
	}
	s.seeks = append(s.seeks, off)
	s.pos = off
	return nil
}

func (s *memSource) SeekRelative(delta int64) error {
	return s.SeekAbsolute(s.pos + delta)
}

func (s *memSource) SeekEnd(off int64) error {
	return s.SeekAbsolute(int64(len(s.data)) - off)
}

func (s *memSource) Tell() (int64, error) { return s.pos, nil }

func (s *memSource) Close() error {
	s.closed = true
	return nil
}

type memFS struct {
	files  map[string][]byte
	opened map[string]*memSource
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}, opened: map[string]*memSource{}}
}

func (fs *memFS) Open(name string) (Source, error) {
	data, ok := fs.files[name]
	if !ok {
		return nil, errors.Errorf("no file %s", name)
	}
	s := &memSource{data: data}
	fs.opened[name] = s
	return s, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SeekSettle = 0
	cfg.PluginName = ""
	return cfg
}

func newTestDevice(t *testing.T) (*Device, *fakeChip) {
	t.Helper()
	chip := newFakeChip()
	d := New(chip, testConfig())
	d.sleep = func(time.Duration) {}
	return d, chip
}

// newTestPlayer returns a Ready player on a PollTrigger.
func newTestPlayer(t *testing.T) (*Player, *fakeChip, *memFS, *PollTrigger) {
	t.Helper()
	d, chip := newTestDevice(t)
	fs := newMemFS()
	trig := NewPollTrigger()
	p, err := NewPlayer(d, fs, trig)
	if err != nil {
		t.Fatalf("NewPlayer: %s", err)
	}
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin: %s", err)
	}
	chip.clearLog()
	return p, chip, fs, trig
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}
