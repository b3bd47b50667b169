package hal

import (
	"errors"
	"image/color"
	"math/bits"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sharpmem"
)

var (
	// sharpmem maps opaque black to a set (reflective) pixel.
	memLCDWhite = color.RGBA{A: 0xFF}
	memLCDBlack = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

var errNoSPI = errors.New("memory LCD: no SPI bus")

// memLCD is a Sharp memory LCD behind sharpmem. The bus must shift bytes
// LSB first; wrap an MSB-only peripheral in lsbFirstBus.
type memLCD struct {
	bus  drivers.SPI
	scs  sharpmem.Pin
	disp sharpmem.Pin
	cfg  sharpmem.Config

	// settle is the wait after raising DISP (tDISP).
	settle time.Duration
	// setup configures the bus before the first transfer.
	setup func() error

	enabled bool
	dev     sharpmem.Device
	fb      *memLCDFramebuffer
}

func newMemLCD(bus drivers.SPI, scs, disp sharpmem.Pin, cfg sharpmem.Config) *memLCD {
	return &memLCD{bus: bus, scs: scs, disp: disp, cfg: cfg}
}

func (d *memLCD) Enable() error {
	d.disp.High()
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
	d.enabled = true
	return nil
}

func (d *memLCD) Init() (Framebuffer, error) {
	if !d.enabled {
		return nil, ErrDisplayDisabled
	}
	if d.bus == nil {
		return nil, errNoSPI
	}
	if d.setup != nil {
		if err := d.setup(); err != nil {
			return nil, err
		}
	}

	if d.fb == nil {
		d.dev = sharpmem.New(d.bus, d.scs)
		d.dev.Configure(d.cfg)
		w, h := d.dev.Size()
		d.fb = &memLCDFramebuffer{monoBuffer: newMonoBuffer(int(w), int(h)), lcd: d}
		d.fb.Clear(true)
	}
	if err := d.dev.Clear(); err != nil {
		return nil, err
	}
	return d.fb, nil
}

type memLCDFramebuffer struct {
	monoBuffer
	lcd *memLCD
}

// Present copies the frame into the driver buffer and sends the changed
// lines. An unchanged frame still toggles VCOM.
func (f *memLCDFramebuffer) Present() error {
	dev := &f.lcd.dev
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			c := memLCDBlack
			if MonoAt(f.buf, f.stride, x, y) {
				c = memLCDWhite
			}
			dev.SetPixel(int16(x), int16(y), c)
		}
	}
	return dev.Display()
}

// lsbFirstBus shifts every byte least significant bit first over an SPI
// peripheral that only sends MSB first.
type lsbFirstBus struct {
	bus drivers.SPI
	tx  []byte
}

func (b *lsbFirstBus) Tx(w, r []byte) error {
	var tx []byte
	if w != nil {
		if cap(b.tx) < len(w) {
			b.tx = make([]byte, len(w))
		}
		tx = b.tx[:len(w)]
		for i, c := range w {
			tx[i] = bits.Reverse8(c)
		}
	}
	err := b.bus.Tx(tx, r)
	for i := range r {
		r[i] = bits.Reverse8(r[i])
	}
	return err
}

func (b *lsbFirstBus) Transfer(c byte) (byte, error) {
	rx, err := b.bus.Transfer(bits.Reverse8(c))
	return bits.Reverse8(rx), err
}
