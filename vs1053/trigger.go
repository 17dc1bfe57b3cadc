package vs1053

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Trigger schedules refill passes. It calls the bound func only while
// armed and never runs two passes at once.
type Trigger interface {
	// Bind sets the refill pass and starts any background machinery.
	Bind(fn func()) error
	Arm()
	Disarm()
	Armed() bool
	// Poll runs one pass from the caller when the trigger is polled, it is
	// a no-op for the other kinds.
	Poll()
	Close() error
}

// EdgeWatcher delivers rising edges of DREQ. On TinyGo it wraps
// machine.Pin.SetInterrupt, the handler runs in interrupt context.
type EdgeWatcher interface {
	Watch(handler func()) error
	StopWatching() error
}

const REQ_CH_SZ = 1 //!< Size of the request channel

// InterruptTrigger runs refill passes on DREQ rising edges. The interrupt
// handler only posts to a one slot channel, a goroutine drains it.
type InterruptTrigger struct {
	pin   EdgeWatcher
	armed atomic.Bool
	req   chan struct{}
	done  chan struct{}
	fn    func()
	once  sync.Once
	logf  func(format string, args ...interface{})
}

func NewInterruptTrigger(pin EdgeWatcher) *InterruptTrigger {
	return &InterruptTrigger{
		pin:  pin,
		req:  make(chan struct{}, REQ_CH_SZ),
		done: make(chan struct{}),
	}
}

func (t *InterruptTrigger) Bind(fn func()) error {
	if t.pin == nil {
		return errors.New("vs1053 failed to set interrupt")
	}
	if t.fn != nil {
		return errors.New("vs1053: trigger already bound")
	}
	t.fn = fn
	go func(req <-chan struct{}) {
		for {
			select {
			case <-req:
				if t.armed.Load() {
					t.fn()
				}
			case <-t.done:
				return
			}
		}
	}(t.req)
	return nil
}

// request is the interrupt handler, it must not block.
func (t *InterruptTrigger) request() {
	select {
	case t.req <- struct{}{}: // send event (no type)
	default: // a pass is already pending
	}
}

// Arm watches DREQ. A pin that cannot be watched leaves the trigger
// disarmed.
func (t *InterruptTrigger) Arm() {
	if t.armed.Swap(true) {
		return
	}
	if err := t.pin.Watch(t.request); err != nil {
		t.armed.Store(false)
		t.log("vs1053: watch DREQ: %s", err.Error())
		return
	}
	// DREQ may already be high, its edge is gone
	t.request()
}

func (t *InterruptTrigger) Disarm() {
	if !t.armed.Swap(false) {
		return
	}
	if err := t.pin.StopWatching(); err != nil {
		t.log("vs1053: stop watching DREQ: %s", err.Error())
	}
}

func (t *InterruptTrigger) setLogger(logf func(format string, args ...interface{})) {
	t.logf = logf
}

func (t *InterruptTrigger) log(format string, args ...interface{}) {
	if t.logf != nil {
		t.logf(format, args...)
	}
}

func (t *InterruptTrigger) Armed() bool { return t.armed.Load() }

func (t *InterruptTrigger) Poll() {}

func (t *InterruptTrigger) Close() error {
	t.Disarm()
	t.once.Do(func() { close(t.done) })
	return nil
}

// TimerTrigger runs a refill pass every period while armed.
type TimerTrigger struct {
	period time.Duration
	armed  atomic.Bool
	done   chan struct{}
	once   sync.Once
	bound  bool
}

func NewTimerTrigger(period time.Duration) *TimerTrigger {
	return &TimerTrigger{period: period, done: make(chan struct{})}
}

func (t *TimerTrigger) Bind(fn func()) error {
	if t.period <= 0 {
		return errors.Errorf("vs1053: invalid timer period %s", t.period)
	}
	if t.bound {
		return errors.New("vs1053: trigger already bound")
	}
	t.bound = true
	go func() {
		ticker := time.NewTicker(t.period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if t.armed.Load() {
					fn()
				}
			case <-t.done:
				return
			}
		}
	}()
	return nil
}

func (t *TimerTrigger) Arm()        { t.armed.Store(true) }
func (t *TimerTrigger) Disarm()     { t.armed.Store(false) }
func (t *TimerTrigger) Armed() bool { return t.armed.Load() }
func (t *TimerTrigger) Poll()       {}

func (t *TimerTrigger) Close() error {
	t.Disarm()
	t.once.Do(func() { close(t.done) })
	return nil
}

// PollTrigger leaves scheduling to the main loop, which calls Poll.
type PollTrigger struct {
	armed atomic.Bool
	fn    func()
}

func NewPollTrigger() *PollTrigger {
	return &PollTrigger{}
}

func (t *PollTrigger) Bind(fn func()) error {
	t.fn = fn
	return nil
}

func (t *PollTrigger) Arm()        { t.armed.Store(true) }
func (t *PollTrigger) Disarm()     { t.armed.Store(false) }
func (t *PollTrigger) Armed() bool { return t.armed.Load() }

func (t *PollTrigger) Poll() {
	if t.fn != nil && t.armed.Load() {
		t.fn()
	}
}

func (t *PollTrigger) Close() error {
	t.Disarm()
	return nil
}
