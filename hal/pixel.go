package hal

// MonoSet writes one pixel into a PixelFormatMono1 buffer. Out-of-range
// coordinates are ignored.
func MonoSet(buf []byte, stride, x, y int, white bool) {
	if x < 0 || y < 0 || x >= stride*8 {
		return
	}
	off := y*stride + x>>3
	if off >= len(buf) {
		return
	}
	mask := byte(0x80) >> (x & 7)
	if white {
		buf[off] |= mask
	} else {
		buf[off] &^= mask
	}
}

// MonoAt reports whether the pixel at (x, y) is white.
func MonoAt(buf []byte, stride, x, y int) bool {
	if x < 0 || y < 0 || x >= stride*8 {
		return false
	}
	off := y*stride + x>>3
	if off >= len(buf) {
		return false
	}
	return buf[off]&(0x80>>(x&7)) != 0
}

const (
	// Reflective panel tones used when showing a mono buffer on an RGB screen.
	monoWhiteR, monoWhiteG, monoWhiteB = 0xE4, 0xE8, 0xDC
	monoBlackR, monoBlackG, monoBlackB = 0x1C, 0x1E, 0x24
)

// monoToRGBA expands a mono buffer into RGBA pixels (4 bytes per pixel).
func monoToRGBA(dst, src []byte, w, h, stride int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			j := (y*w + x) * 4
			if j+3 >= len(dst) {
				return
			}
			if MonoAt(src, stride, x, y) {
				dst[j+0] = monoWhiteR
				dst[j+1] = monoWhiteG
				dst[j+2] = monoWhiteB
			} else {
				dst[j+0] = monoBlackR
				dst[j+1] = monoBlackG
				dst[j+2] = monoBlackB
			}
			dst[j+3] = 0xFF
		}
	}
}

// monoToASCII renders the rows that contain at least one black pixel,
// '#' for black and '.' for white.
func monoToASCII(src []byte, w, h, stride int) []string {
	first, last := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !MonoAt(src, stride, x, y) {
				if first < 0 {
					first = y
				}
				last = y
				break
			}
		}
	}
	if first < 0 {
		return nil
	}

	lines := make([]string, 0, last-first+1)
	row := make([]byte, w)
	for y := first; y <= last; y++ {
		for x := 0; x < w; x++ {
			if MonoAt(src, stride, x, y) {
				row[x] = '.'
			} else {
				row[x] = '#'
			}
		}
		lines = append(lines, string(row))
	}
	return lines
}
