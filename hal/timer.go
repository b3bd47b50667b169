package hal

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MaxPrescale is the largest clock divider the timer peripherals accept.
const MaxPrescale = 1024

var ErrBadTimerConfig = errors.New("invalid timer configuration")

// TimerConfig selects the counting rate and reload value of a Timer.
//
// The counter advances once every Prescale peripheral clocks and overflows
// after reaching Top, so one overflow period is Prescale*(Top+1) clocks.
type TimerConfig struct {
	Prescale uint16
	Top      uint32
}

// Counts returns the number of peripheral clocks per overflow.
func (c TimerConfig) Counts() uint64 {
	return uint64(c.Prescale) * (uint64(c.Top) + 1)
}

// Period returns the overflow period for the given peripheral clock.
func (c TimerConfig) Period(clockHz uint32) time.Duration {
	if clockHz == 0 {
		return 0
	}
	return time.Duration(c.Counts() * uint64(time.Second) / uint64(clockHz))
}

// Validate checks the prescaler is a supported power of two and Top fits
// a counter of the given width.
func (c TimerConfig) Validate(counterBits uint8) error {
	p := c.Prescale
	if p == 0 || p > MaxPrescale || p&(p-1) != 0 {
		return fmt.Errorf("%w: prescale %d", ErrBadTimerConfig, p)
	}
	if counterBits == 0 || counterBits > 32 {
		return fmt.Errorf("%w: counter width %d", ErrBadTimerConfig, counterBits)
	}
	if counterBits < 32 && uint64(c.Top) >= uint64(1)<<counterBits {
		return fmt.Errorf("%w: top %d exceeds %d-bit counter", ErrBadTimerConfig, c.Top, counterBits)
	}
	return nil
}

// tickerFunc starts a periodic source and returns its channel and a stop hook.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

// swTimer models a timer peripheral on top of a periodic tick source.
// Each tick is one counter overflow.
type swTimer struct {
	clockHz uint32
	bits    uint8
	ticker  tickerFunc

	mu        sync.Mutex
	cfg       TimerConfig
	hasCfg    bool
	handler   func()
	ovfEnable bool
	running   bool
	stop      chan struct{}
	done      chan struct{}

	pending   atomic.Bool // overflow interrupt flag
	overflows atomic.Uint64
}

func newSWTimer(clockHz uint32, bits uint8, ticker tickerFunc) *swTimer {
	return &swTimer{clockHz: clockHz, bits: bits, ticker: ticker}
}

func (t *swTimer) ClockHz() uint32    { return t.clockHz }
func (t *swTimer) CounterBits() uint8 { return t.bits }
func (t *swTimer) Overflows() uint64  { return t.overflows.Load() }
func (t *swTimer) FlagPending() bool  { return t.pending.Load() }
func (t *swTimer) ClearOverflow()     { t.pending.Store(false) }

func (t *swTimer) Configure(cfg TimerConfig) error {
	if err := cfg.Validate(t.bits); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("%w: timer running", ErrBadTimerConfig)
	}
	t.cfg = cfg
	t.hasCfg = true
	return nil
}

func (t *swTimer) SetHandler(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = fn
}

func (t *swTimer) EnableOverflowInterrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ovfEnable = true
}

func (t *swTimer) EnableIRQ() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || !t.hasCfg {
		return
	}
	period := t.cfg.Period(t.clockHz)
	if period <= 0 {
		return
	}

	ch, stopTicker := t.ticker(period)
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.loop(ch, stopTicker, t.stop, t.done)
}

func (t *swTimer) loop(ch <-chan time.Time, stopTicker func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer stopTicker()
	for {
		select {
		case <-stop:
			return
		case <-ch:
		}

		t.overflows.Add(1)
		t.pending.Store(true)

		t.mu.Lock()
		fn, enabled := t.handler, t.ovfEnable
		t.mu.Unlock()
		if enabled && fn != nil {
			fn()
		}
	}
}

func (t *swTimer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
}
