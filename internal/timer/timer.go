// Package timer picks prescaler and reload values for periodic overflow
// interrupts.
package timer

import (
	"errors"
	"fmt"

	"memclock/hal"
)

var (
	ErrInvalidRate     = errors.New("timer: clock and target rate must be non-zero")
	ErrNoExactDivider  = errors.New("timer: no prescale/top pair gives the exact rate")
	ErrCounterTooSmall = errors.New("timer: counter width out of range")
)

// Prescalers lists the supported clock dividers, smallest first.
var Prescalers = [...]uint16{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024}

// Solve returns the configuration with the smallest prescaler that makes a
// counterBits-wide counter overflow at exactly targetHz.
func Solve(clockHz, targetHz uint32, counterBits uint8) (hal.TimerConfig, error) {
	if clockHz == 0 || targetHz == 0 {
		return hal.TimerConfig{}, ErrInvalidRate
	}
	if counterBits == 0 || counterBits > 32 {
		return hal.TimerConfig{}, fmt.Errorf("%w: %d bits", ErrCounterTooSmall, counterBits)
	}
	limit := uint64(1) << counterBits

	for _, p := range Prescalers {
		div := uint64(p) * uint64(targetHz)
		if uint64(clockHz)%div != 0 {
			continue
		}
		counts := uint64(clockHz) / div
		if counts == 0 || counts > limit {
			continue
		}
		return hal.TimerConfig{Prescale: p, Top: uint32(counts - 1)}, nil
	}
	return hal.TimerConfig{}, fmt.Errorf("%w: %d Hz from %d Hz with %d-bit counter",
		ErrNoExactDivider, targetHz, clockHz, counterBits)
}

// OverflowHz returns the overflow rate of cfg and whether it is exact.
func OverflowHz(clockHz uint32, cfg hal.TimerConfig) (hz uint32, exact bool) {
	counts := cfg.Counts()
	if counts == 0 {
		return 0, false
	}
	return uint32(uint64(clockHz) / counts), uint64(clockHz)%counts == 0
}

// Verify reports an error unless cfg fits the counter and overflows at
// exactly targetHz.
func Verify(clockHz, targetHz uint32, counterBits uint8, cfg hal.TimerConfig) error {
	if err := cfg.Validate(counterBits); err != nil {
		return err
	}
	hz, exact := OverflowHz(clockHz, cfg)
	if !exact || hz != targetHz {
		return fmt.Errorf("%w: prescale %d top %d gives %d Hz (exact=%v), want %d Hz",
			ErrNoExactDivider, cfg.Prescale, cfg.Top, hz, exact, targetHz)
	}
	return nil
}
