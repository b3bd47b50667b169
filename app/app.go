package app

import (
	"fmt"
	"time"

	"memclock/hal"
	"memclock/internal/buildinfo"
	"memclock/internal/clock"
	"memclock/internal/gfx"
	"memclock/internal/timer"
)

type Config struct {
	Start clock.TimeOfDay
	// Title is drawn on the first line. Empty leaves the clock on line 0.
	Title    string
	TargetHz uint32
	XOffset  int
	YOffset  int
}

func DefaultConfig() Config {
	return Config{
		Title:    "Hien thi dong ho",
		TargetHz: 1,
		XOffset:  5,
		YOffset:  5,
	}
}

// App shows a HH:MM:SS clock advanced by a timer overflow interrupt.
//
// Init and ProcessAction run in the foreground. HandleOverflow runs in
// interrupt context and only advances the clock.
type App struct {
	h   hal.HAL
	cfg Config
	log hal.Logger

	clk      *clock.Clock
	gctx     *gfx.Context
	timer    hal.Timer
	timerCfg hal.TimerConfig

	line      int
	titleLine int
	ready     bool

	lastFlushErr string
	text         [clock.TextLen]byte
}

func New(h hal.HAL, cfg Config) *App {
	if cfg.TargetHz == 0 {
		cfg.TargetHz = 1
	}
	return &App{
		h:         h,
		cfg:       cfg,
		log:       h.Logger(),
		clk:       clock.New(cfg.Start),
		titleLine: -1,
	}
}

// Run initializes the app and loops forever (TinyGo entrypoint).
// An init failure halts the board.
func Run(h hal.HAL, cfg Config) {
	a := New(h, cfg)
	if err := a.Init(); err != nil {
		a.halt(err)
	}
	for {
		a.ProcessAction()
		time.Sleep(10 * time.Millisecond)
	}
}

// NewStep initializes the app and returns its foreground step for the host
// runners.
func NewStep(h hal.HAL, cfg Config) (func() error, error) {
	a := New(h, cfg)
	if err := a.Init(); err != nil {
		return nil, err
	}
	return func() error {
		a.ProcessAction()
		return nil
	}, nil
}

// Init brings up the display, drawing context and timer, then draws the
// first frame. Init must be called once before ProcessAction.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	a.logf("%s: init", buildinfo.Short())

	disp := a.h.Display()
	if disp == nil {
		return a.initError(StageDisplayEnable, hal.ErrNotImplemented)
	}
	if err := disp.Enable(); err != nil {
		return a.initError(StageDisplayEnable, err)
	}
	fb, err := disp.Init()
	if err != nil {
		return a.initError(StageDriverInit, err)
	}
	g, err := gfx.NewContext(fb)
	if err != nil {
		return a.initError(StageContextInit, err)
	}
	g.Background = gfx.White
	g.Foreground = gfx.Black
	g.Clear()
	if err := g.SetFont(gfx.NarrowFont); err != nil {
		return a.initError(StageContextInit, err)
	}
	a.gctx = g

	a.titleLine, a.line = -1, 0
	if a.cfg.Title != "" {
		a.titleLine, a.line = 0, 1
	}

	if err := a.setupTimer(); err != nil {
		return a.initError(StageTimer, err)
	}

	a.ready = true
	a.clk.TakeDirty()
	a.render()
	return nil
}

func (a *App) setupTimer() error {
	t := a.h.Timer()
	if t == nil {
		return hal.ErrNotImplemented
	}
	cfg, err := timer.Solve(t.ClockHz(), a.cfg.TargetHz, t.CounterBits())
	if err != nil {
		return err
	}
	if err := t.Configure(cfg); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	a.timer = t
	a.timerCfg = cfg
	t.SetHandler(a.HandleOverflow)
	t.EnableOverflowInterrupt()
	t.EnableIRQ()

	a.logf("timer: clock=%dHz prescale=%d top=%d period=%s",
		t.ClockHz(), cfg.Prescale, cfg.Top, cfg.Period(t.ClockHz()))
	return nil
}

// HandleOverflow is bound to the timer interrupt vector.
func (a *App) HandleOverflow() {
	a.timer.ClearOverflow()
	a.clk.Tick()
}

// ProcessAction is the periodic foreground entrypoint. It redraws when the
// clock changed since the last call.
func (a *App) ProcessAction() {
	if !a.ready {
		return
	}
	if a.clk.TakeDirty() {
		a.render()
	}
}

// Now returns the displayed time of day.
func (a *App) Now() clock.TimeOfDay { return a.clk.Now() }

// TimerConfig returns the timer configuration chosen by Init.
func (a *App) TimerConfig() hal.TimerConfig { return a.timerCfg }

// Close stops the timer.
func (a *App) Close() {
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *App) render() {
	g := a.gctx
	text := a.clk.Now().AppendText(a.text[:0])

	g.Clear()
	if a.titleLine >= 0 {
		_ = g.DrawStringOnLine(a.cfg.Title, a.titleLine, gfx.AlignLeft, a.cfg.XOffset, a.cfg.YOffset, true)
	}
	_ = g.DrawStringOnLine(string(text), a.line, gfx.AlignLeft, a.cfg.XOffset, a.cfg.YOffset, true)

	if err := g.Flush(); err != nil {
		if msg := err.Error(); msg != a.lastFlushErr {
			a.lastFlushErr = msg
			a.logf("display: flush: %v", err)
		}
		return
	}
	a.lastFlushErr = ""
}

func (a *App) initError(stage Stage, err error) error {
	ierr := &InitError{Stage: stage, Err: err}
	a.logf("memclock: %v", ierr)
	return ierr
}

func (a *App) logf(format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.WriteLineString(fmt.Sprintf(format, args...))
}
