// Package clock holds the time-of-day counter advanced by the timer interrupt.
package clock

import (
	"errors"
	"fmt"
	"sync/atomic"
)

const (
	SecondsPerDay = 24 * 60 * 60

	// TextLen is the length of the HH:MM:SS rendering.
	TextLen = 8
)

var ErrBadFormat = errors.New("clock: want HH:MM:SS")

// TimeOfDay is a wall-clock time with no date.
type TimeOfDay struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8
}

// FromSeconds converts a count of seconds since midnight, wrapping at 24h.
func FromSeconds(n uint64) TimeOfDay {
	n %= SecondsPerDay
	return TimeOfDay{
		Hours:   uint8(n / 3600),
		Minutes: uint8(n / 60 % 60),
		Seconds: uint8(n % 60),
	}
}

// SecondOfDay returns the number of seconds since midnight.
func (t TimeOfDay) SecondOfDay() uint32 {
	return uint32(t.Hours)*3600 + uint32(t.Minutes)*60 + uint32(t.Seconds)
}

func (t TimeOfDay) Valid() bool {
	return t.Hours < 24 && t.Minutes < 60 && t.Seconds < 60
}

// Next returns the time one second later.
func (t TimeOfDay) Next() TimeOfDay {
	t.Seconds++
	if t.Seconds == 60 {
		t.Seconds = 0
		t.Minutes++
		if t.Minutes == 60 {
			t.Minutes = 0
			t.Hours++
			if t.Hours == 24 {
				t.Hours = 0
			}
		}
	}
	return t
}

// AppendText appends the zero-padded 24-hour HH:MM:SS form to dst.
// It does not allocate when dst has room.
func (t TimeOfDay) AppendText(dst []byte) []byte {
	return append(dst,
		'0'+t.Hours/10%10, '0'+t.Hours%10, ':',
		'0'+t.Minutes/10%10, '0'+t.Minutes%10, ':',
		'0'+t.Seconds/10%10, '0'+t.Seconds%10,
	)
}

func (t TimeOfDay) String() string {
	var buf [TextLen]byte
	return string(t.AppendText(buf[:0]))
}

// Parse reads a HH:MM:SS string.
func Parse(s string) (TimeOfDay, error) {
	if len(s) != TextLen || s[2] != ':' || s[5] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	var v [3]uint8
	for i := range v {
		hi, lo := s[i*3], s[i*3+1]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
		}
		v[i] = (hi-'0')*10 + (lo - '0')
	}
	t := TimeOfDay{Hours: v[0], Minutes: v[1], Seconds: v[2]}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %q out of range", ErrBadFormat, s)
	}
	return t, nil
}

// Clock is a time of day shared between the overflow handler and the
// foreground loop.
//
// The value lives in one atomic word so a reader never sees a torn
// hours/minutes/seconds triple. Tick is safe to call from interrupt context.
type Clock struct {
	sod   atomic.Uint32
	dirty atomic.Bool
}

// New returns a clock set to start and marked dirty.
func New(start TimeOfDay) *Clock {
	c := &Clock{}
	c.Set(start)
	return c
}

// Tick advances the clock by one second and marks it dirty.
func (c *Clock) Tick() {
	for {
		old := c.sod.Load()
		next := FromSeconds(uint64(old)).Next().SecondOfDay()
		if c.sod.CompareAndSwap(old, next) {
			break
		}
	}
	c.dirty.Store(true)
}

// Set replaces the current time. Invalid values wrap into range.
func (c *Clock) Set(t TimeOfDay) {
	if !t.Valid() {
		t = FromSeconds(uint64(t.Hours)*3600 + uint64(t.Minutes)*60 + uint64(t.Seconds))
	}
	c.sod.Store(t.SecondOfDay())
	c.dirty.Store(true)
}

// Now returns a consistent snapshot of the current time.
func (c *Clock) Now() TimeOfDay {
	return FromSeconds(uint64(c.sod.Load()))
}

// TakeDirty reports whether the clock changed since the last call and
// clears the flag.
func (c *Clock) TakeDirty() bool {
	return c.dirty.Swap(false)
}
