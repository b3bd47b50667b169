//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func startHostTimer(t *testing.T, fc *clockwork.FakeClock, enableOverflow bool, handler func(*swTimer)) *swTimer {
	t.Helper()
	h := newHostHAL(io.Discard, fc)
	tm := h.timer
	if err := tm.Configure(TimerConfig{Prescale: 1024, Top: 37_499}); err != nil {
		t.Fatalf("Configure() err = %v", err)
	}
	tm.SetHandler(func() { handler(tm) })
	if enableOverflow {
		tm.EnableOverflowInterrupt()
	}
	tm.EnableIRQ()
	t.Cleanup(tm.Stop)
	fc.BlockUntil(1)
	return tm
}

func TestHostTimerOverflowsOncePerSecond(t *testing.T) {
	fc := clockwork.NewFakeClock()
	hits := make(chan struct{}, 16)
	tm := startHostTimer(t, fc, true, func(tm *swTimer) {
		tm.ClearOverflow()
		hits <- struct{}{}
	})

	fc.Advance(999 * time.Millisecond)
	select {
	case <-hits:
		t.Fatalf("overflow before one second")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(time.Millisecond)
	waitFor(t, hits, "first overflow")
	for i := 0; i < 4; i++ {
		fc.Advance(time.Second)
		waitFor(t, hits, "overflow")
	}

	if got := tm.Overflows(); got != 5 {
		t.Fatalf("Overflows() = %d, want 5", got)
	}
	if tm.FlagPending() {
		t.Fatalf("FlagPending() = true after handler cleared it")
	}
}

func TestHostTimerMaskedOverflowSetsFlagOnly(t *testing.T) {
	fc := clockwork.NewFakeClock()
	called := make(chan struct{}, 1)
	tm := startHostTimer(t, fc, false, func(*swTimer) { called <- struct{}{} })

	fc.Advance(time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for tm.Overflows() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("overflow never counted")
		}
		time.Sleep(time.Millisecond)
	}
	if !tm.FlagPending() {
		t.Fatalf("FlagPending() = false after overflow")
	}
	select {
	case <-called:
		t.Fatalf("handler ran with the overflow interrupt disabled")
	default:
	}
}

func TestHostTimerStop(t *testing.T) {
	fc := clockwork.NewFakeClock()
	hits := make(chan struct{}, 16)
	tm := startHostTimer(t, fc, true, func(*swTimer) { hits <- struct{}{} })

	fc.Advance(time.Second)
	waitFor(t, hits, "overflow")
	tm.Stop()
	tm.Stop()

	fc.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := tm.Overflows(); got != 1 {
		t.Fatalf("Overflows() after Stop = %d, want 1", got)
	}
}

func TestHostTimerEnableIRQNeedsConfig(t *testing.T) {
	h := newHostHAL(io.Discard, clockwork.NewFakeClock())
	h.timer.EnableIRQ()
	h.timer.mu.Lock()
	running := h.timer.running
	h.timer.mu.Unlock()
	if running {
		t.Fatalf("timer running without a configuration")
	}
}

func TestHostTimerConfigure(t *testing.T) {
	h := newHostHAL(io.Discard, clockwork.NewFakeClock())
	tm := h.timer
	if tm.ClockHz() != hostTimerClockHz || tm.CounterBits() != hostTimerBits {
		t.Fatalf("ClockHz, CounterBits = %d, %d", tm.ClockHz(), tm.CounterBits())
	}
	if err := tm.Configure(TimerConfig{Prescale: 1024, Top: 70_000}); !errors.Is(err, ErrBadTimerConfig) {
		t.Fatalf("Configure(top too big) err = %v, want ErrBadTimerConfig", err)
	}
	if err := tm.Configure(TimerConfig{Prescale: 1024, Top: 37_499}); err != nil {
		t.Fatalf("Configure() err = %v", err)
	}
	tm.EnableIRQ()
	defer tm.Stop()
	if err := tm.Configure(TimerConfig{Prescale: 1, Top: 1}); !errors.Is(err, ErrBadTimerConfig) {
		t.Fatalf("Configure(while running) err = %v, want ErrBadTimerConfig", err)
	}
}

func TestHostDisplayRequiresEnable(t *testing.T) {
	h := newHostHAL(io.Discard, clockwork.NewFakeClock())
	if _, err := h.Display().Init(); !errors.Is(err, ErrDisplayDisabled) {
		t.Fatalf("Init() before Enable err = %v, want ErrDisplayDisabled", err)
	}
	if err := h.Display().Enable(); err != nil {
		t.Fatalf("Enable() err = %v", err)
	}
	fb, err := h.Display().Init()
	if err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	if fb.Width() != hostLCDWidth || fb.Height() != hostLCDHeight || fb.Format() != PixelFormatMono1 {
		t.Fatalf("fb = %dx%d format %d", fb.Width(), fb.Height(), fb.Format())
	}
	if fb.StrideBytes() != hostLCDWidth/8 {
		t.Fatalf("StrideBytes() = %d, want %d", fb.StrideBytes(), hostLCDWidth/8)
	}
}

func TestHostFramebufferPresentPublishesFrame(t *testing.T) {
	fb := newHostFramebuffer(16, 2)
	front := make([]byte, len(fb.Buffer()))

	fb.Clear(true)
	MonoSet(fb.Buffer(), fb.StrideBytes(), 3, 1, false)
	if n := fb.snapshot(front); n != 0 || !bytes.Equal(front, make([]byte, len(front))) {
		t.Fatalf("snapshot before Present = %d, %x, want untouched front buffer", n, front)
	}

	if err := fb.Present(); err != nil {
		t.Fatalf("Present() err = %v", err)
	}
	if n := fb.snapshot(front); n != 1 {
		t.Fatalf("presents = %d, want 1", n)
	}
	if MonoAt(front, fb.StrideBytes(), 3, 1) || !MonoAt(front, fb.StrideBytes(), 4, 1) {
		t.Fatalf("front buffer does not match the presented frame")
	}
}

func TestHostLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &hostLogger{w: &buf}
	l.WriteLineString("a")
	l.WriteLineBytes([]byte("b"))
	if got := buf.String(); got != "a\nb\n" {
		t.Fatalf("log = %q, want %q", got, "a\nb\n")
	}
}

func TestRunHeadlessStopsAfterSteps(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var out bytes.Buffer
	h := newHostHAL(&out, fc)

	fb := h.disp.fb
	fb.Clear(true)
	MonoSet(fb.Buffer(), fb.StrideBytes(), 2, 7, false)
	_ = fb.Present()

	steps := make(chan struct{}, 8)
	newApp := func(HAL) (func() error, error) {
		return func() error {
			steps <- struct{}{}
			return nil
		}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- runHeadless(context.Background(), h, newApp, HeadlessConfig{Hz: 10, Steps: 3, Dump: true})
	}()

	for i := 0; i < 3; i++ {
		fc.BlockUntil(1)
		fc.Advance(100 * time.Millisecond)
		waitFor(t, steps, "step")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runHeadless() err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runHeadless did not return after 3 steps")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "..#.") || len(lines[0]) != hostLCDWidth {
		t.Fatalf("dump = %q, want one row with a pixel at x=2", lines)
	}
}

func TestRunHeadlessErrors(t *testing.T) {
	boom := errors.New("boom")

	h := newHostHAL(io.Discard, clockwork.NewFakeClock())
	err := runHeadless(context.Background(), h, func(HAL) (func() error, error) { return nil, boom }, HeadlessConfig{})
	if !errors.Is(err, boom) {
		t.Fatalf("runHeadless(newApp error) = %v, want boom", err)
	}

	fc := clockwork.NewFakeClock()
	h = newHostHAL(io.Discard, fc)
	done := make(chan error, 1)
	go func() {
		done <- runHeadless(context.Background(), h, func(HAL) (func() error, error) {
			return func() error { return boom }, nil
		}, HeadlessConfig{Hz: 1})
	}()
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("runHeadless(step error) = %v, want boom", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runHeadless did not return on step error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	h = newHostHAL(io.Discard, clockwork.NewFakeClock())
	go func() {
		done <- runHeadless(ctx, h, func(HAL) (func() error, error) { return nil, nil }, HeadlessConfig{})
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("runHeadless(canceled) = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runHeadless did not return on cancel")
	}
}
