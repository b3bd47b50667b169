//go:build !tinygo && cgo

package hal

import (
	"image"

	"memclock/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows the memory LCD.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) (func() error, error), scale int) error {
	h := New().(*hostHAL)
	defer h.timer.Stop()

	step, err := newApp(h)
	if err != nil {
		return err
	}
	if scale <= 0 {
		scale = 1
	}

	fb := h.disp.fb
	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(buildinfo.Short())
	ebiten.SetWindowSize(fb.width*scale, fb.height*scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	shown   uint64
	step    func() error
}

func (g *hostGame) Update() error {
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.disp.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	if n := fb.snapshot(g.scratch); n != g.shown || g.shown == 0 {
		g.shown = n
		monoToRGBA(g.img.Pix, g.scratch, fb.width, fb.height, fb.stride)
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.disp.fb.width, g.h.disp.fb.height
}
