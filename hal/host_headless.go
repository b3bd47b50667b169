//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	// Steps stops the runner after N foreground iterations (0 = run forever).
	Steps uint64
	// Dump writes the last presented frame to the logger on exit.
	Dump bool
}

// RunHeadless runs the application without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	return runHeadless(ctx, New().(*hostHAL), newApp, cfg)
}

func runHeadless(ctx context.Context, h *hostHAL, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	step, err := newApp(h)
	if err != nil {
		h.timer.Stop()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		t := h.clk.NewTicker(d)
		defer t.Stop()

		var n uint64
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.Chan():
				if step != nil {
					if err := step(); err != nil {
						return err
					}
				}
				n++
				if cfg.Steps > 0 && n >= cfg.Steps {
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		h.timer.Stop()
		return nil
	})

	err = g.Wait()
	if cfg.Dump {
		h.dumpFrame()
	}
	return err
}

func (h *hostHAL) dumpFrame() {
	fb := h.disp.fb
	front := make([]byte, len(fb.buf))
	fb.snapshot(front)
	for _, line := range monoToASCII(front, fb.width, fb.height, fb.stride) {
		h.logger.WriteLineString(line)
	}
}
