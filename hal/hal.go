package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented  = errors.New("not implemented")
	ErrDisplayDisabled = errors.New("display panel not enabled")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatMono1 is 1bpp, MSB first within a byte, rows padded to
	// StrideBytes. A set bit is a white (reflective) pixel, as on a memory LCD.
	PixelFormatMono1 PixelFormat = iota + 1
)

// Framebuffer is the display-memory driver surface plus a "present" hook.
//
// Drawing happens in Buffer; nothing reaches the panel until Present.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	Clear(white bool)
	Present() error
}

// Display is the physical panel plus its display-memory driver.
type Display interface {
	// Enable powers the panel through board control.
	Enable() error
	// Init binds the display-memory driver and returns its framebuffer.
	// It fails with ErrDisplayDisabled if Enable has not succeeded.
	Init() (Framebuffer, error)
}

// Timer is a hardware counter with an overflow interrupt.
//
// The handler runs in interrupt context: it must not block.
type Timer interface {
	// ClockHz is the frequency of the peripheral clock feeding the prescaler.
	ClockHz() uint32
	// CounterBits is the width of the counting register.
	CounterBits() uint8
	Configure(cfg TimerConfig) error
	SetHandler(fn func())
	EnableOverflowInterrupt()
	ClearOverflow()
	// EnableIRQ unmasks the timer line at the interrupt controller and
	// starts delivering overflow events to the handler.
	EnableIRQ()
	// Stop disables the counter and waits for any running handler to return.
	Stop()
}

// HAL provides the only contact point between the application and the board.
type HAL interface {
	Logger() Logger
	Display() Display
	Timer() Timer
}
