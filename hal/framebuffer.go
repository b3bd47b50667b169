package hal

// monoBuffer is the PixelFormatMono1 storage shared by the platform
// framebuffers. It does not implement Present.
type monoBuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

func newMonoBuffer(width, height int) monoBuffer {
	stride := (width + 7) / 8
	return monoBuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (b *monoBuffer) Width() int          { return b.width }
func (b *monoBuffer) Height() int         { return b.height }
func (b *monoBuffer) Format() PixelFormat { return PixelFormatMono1 }
func (b *monoBuffer) StrideBytes() int    { return b.stride }
func (b *monoBuffer) Buffer() []byte      { return b.buf }

func (b *monoBuffer) Clear(white bool) {
	var fill byte
	if white {
		fill = 0xFF
	}
	for i := range b.buf {
		b.buf[i] = fill
	}
}
