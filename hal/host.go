//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// Sharp LS013B7DH03 geometry.
	hostLCDWidth  = 128
	hostLCDHeight = 128

	// The simulated timer is fed by a 38.4 MHz crystal through a 16-bit counter.
	hostTimerClockHz = 38_400_000
	hostTimerBits    = 16
)

type hostHAL struct {
	clk    clockwork.Clock
	logger *hostLogger
	disp   *hostDisplay
	timer  *swTimer
}

// New returns a host HAL implementation backed by the wall clock.
func New() HAL {
	return newHostHAL(os.Stdout, clockwork.NewRealClock())
}

func newHostHAL(w io.Writer, clk clockwork.Clock) *hostHAL {
	return &hostHAL{
		clk:    clk,
		logger: &hostLogger{w: w},
		disp:   &hostDisplay{fb: newHostFramebuffer(hostLCDWidth, hostLCDHeight)},
		timer:  newSWTimer(hostTimerClockHz, hostTimerBits, clockworkTicker(clk)),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return h.disp }
func (h *hostHAL) Timer() Timer     { return h.timer }

func clockworkTicker(clk clockwork.Clock) tickerFunc {
	return func(d time.Duration) (<-chan time.Time, func()) {
		t := clk.NewTicker(d)
		return t.Chan(), t.Stop
	}
}

type hostDisplay struct {
	mu      sync.Mutex
	enabled bool
	fb      *hostFramebuffer
}

func (d *hostDisplay) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = true
	return nil
}

func (d *hostDisplay) Init() (Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return nil, ErrDisplayDisabled
	}
	return d.fb, nil
}

// hostFramebuffer keeps a front copy that only changes on Present, so the
// window shows exactly what a panel would.
type hostFramebuffer struct {
	monoBuffer

	mu       sync.Mutex
	front    []byte
	presents uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{monoBuffer: newMonoBuffer(width, height)}
	f.front = make([]byte, len(f.buf))
	return f
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.front, f.buf)
	f.presents++
	return nil
}

func (f *hostFramebuffer) snapshot(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.presents
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
