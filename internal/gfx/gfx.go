// Package gfx is a small drawing context for mono framebuffers: colors,
// a font, a line grid, text and clear/flush.
package gfx

import (
	"errors"
	"image/color"

	"memclock/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	ErrNoFramebuffer     = errors.New("gfx: no framebuffer")
	ErrUnsupportedFormat = errors.New("gfx: unsupported pixel format")
	ErrBadFont           = errors.New("gfx: font has no usable metrics")
	ErrLineOutOfRange    = errors.New("gfx: line out of range")
)

// NarrowFont is the default fixed-width font.
var NarrowFont tinyfont.Fonter = &proggy.TinySZ8pt7b

type Color uint8

const (
	Black Color = iota
	White
)

func (c Color) RGBA() color.RGBA {
	if c == White {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{A: 255}
}

type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Context holds drawing state for one framebuffer.
//
// It is not safe for concurrent use.
type Context struct {
	Foreground  Color
	Background  Color
	LineSpacing int

	fb   hal.Framebuffer
	surf surface

	font       tinyfont.Fonter
	lineHeight int
	ascent     int
}

// NewContext returns a context drawing black on white in NarrowFont.
func NewContext(fb hal.Framebuffer) (*Context, error) {
	if fb == nil {
		return nil, ErrNoFramebuffer
	}
	if fb.Format() != hal.PixelFormatMono1 {
		return nil, ErrUnsupportedFormat
	}
	w, h, stride := fb.Width(), fb.Height(), fb.StrideBytes()
	if w <= 0 || h <= 0 || stride*8 < w || len(fb.Buffer()) < stride*h {
		return nil, ErrNoFramebuffer
	}

	c := &Context{
		Foreground: Black,
		Background: White,
		fb:         fb,
		surf:       surface{fb: fb},
	}
	if err := c.SetFont(NarrowFont); err != nil {
		return nil, err
	}
	return c, nil
}

// SetFont selects the active font. Line height comes from the font's
// y-advance and the baseline from the ascent of '0'.
func (c *Context) SetFont(f tinyfont.Fonter) error {
	if f == nil {
		return ErrBadFont
	}
	lh := int(f.GetYAdvance())
	if lh <= 0 {
		return ErrBadFont
	}
	_, outbox := tinyfont.LineWidth(f, "0")
	if outbox == 0 {
		return ErrBadFont
	}
	ascent := -int(f.GetGlyph('0').Info().YOffset)
	if ascent <= 0 || ascent > lh {
		ascent = lh * 3 / 4
	}

	c.font = f
	c.lineHeight = lh
	c.ascent = ascent
	return nil
}

func (c *Context) Font() tinyfont.Fonter { return c.font }

func (c *Context) Width() int { return c.fb.Width() }

func (c *Context) LineHeight() int { return c.lineHeight }

// Lines returns how many text lines fit on the framebuffer.
func (c *Context) Lines() int {
	pitch := c.lineHeight + c.LineSpacing
	if pitch <= 0 {
		return 0
	}
	return c.fb.Height() / pitch
}

// TextWidth returns the advance width of s in pixels.
func (c *Context) TextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(c.font, s)
	return int(outbox)
}

// Clear fills the framebuffer with the background color.
func (c *Context) Clear() {
	c.fb.Clear(c.Background == White)
}

// DrawString draws s with its top-left corner at (x, y). When opaque is
// set the text box is filled with the background color first.
func (c *Context) DrawString(s string, x, y int, opaque bool) {
	if opaque {
		c.fillRect(x, y, c.TextWidth(s), c.lineHeight, c.Background)
	}
	tinyfont.WriteLine(&c.surf, c.font, int16(x), int16(y+c.ascent), s, c.Foreground.RGBA())
}

// DrawStringOnLine draws s on a line of the text grid. xOffset is measured
// from the aligned edge; yOffset shifts the whole grid down.
func (c *Context) DrawStringOnLine(s string, line int, align Align, xOffset, yOffset int, opaque bool) error {
	if line < 0 {
		return ErrLineOutOfRange
	}
	y := yOffset + line*(c.lineHeight+c.LineSpacing)
	if y+c.lineHeight > c.fb.Height() {
		return ErrLineOutOfRange
	}

	w := c.TextWidth(s)
	var x int
	switch align {
	case AlignCenter:
		x = (c.fb.Width()-w)/2 + xOffset
	case AlignRight:
		x = c.fb.Width() - w - xOffset
	default:
		x = xOffset
	}
	c.DrawString(s, x, y, opaque)
	return nil
}

// Flush transfers the framebuffer to the panel.
func (c *Context) Flush() error {
	return c.fb.Present()
}

func (c *Context) fillRect(x0, y0, w, h int, col Color) {
	buf, stride := c.fb.Buffer(), c.fb.StrideBytes()
	maxW, maxH := c.fb.Width(), c.fb.Height()
	white := col == White
	for y := y0; y < y0+h; y++ {
		if y < 0 || y >= maxH {
			continue
		}
		for x := x0; x < x0+w; x++ {
			if x < 0 || x >= maxW {
				continue
			}
			hal.MonoSet(buf, stride, x, y, white)
		}
	}
}

// surface adapts a mono framebuffer to the tinyfont drawing target.
type surface struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*surface)(nil)

func (s *surface) Size() (x, y int16) {
	return int16(s.fb.Width()), int16(s.fb.Height())
}

func (s *surface) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || iy < 0 || ix >= s.fb.Width() || iy >= s.fb.Height() {
		return
	}
	white := int(c.R)+int(c.G)+int(c.B) >= 3*128
	hal.MonoSet(s.fb.Buffer(), s.fb.StrideBytes(), ix, iy, white)
}

func (s *surface) Display() error { return nil }
