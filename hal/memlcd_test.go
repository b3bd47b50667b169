package hal

import (
	"bytes"
	"errors"
	"testing"

	"tinygo.org/x/drivers/sharpmem"
)

type recordPin struct{ high bool }

func (p *recordPin) High() { p.high = true }
func (p *recordPin) Low()  { p.high = false }

// recordBus captures every byte sent and counts transfers made with SCS low.
type recordBus struct {
	scs      *recordPin
	sent     []byte
	deselect int
	err      error
}

func (b *recordBus) Tx(w, _ []byte) error {
	if !b.scs.high {
		b.deselect++
	}
	b.sent = append(b.sent, w...)
	return b.err
}

func (b *recordBus) Transfer(c byte) (byte, error) {
	b.sent = append(b.sent, c)
	return c, b.err
}

func (b *recordBus) take() []byte {
	out := b.sent
	b.sent = nil
	return out
}

func newTestMemLCD(w, h int16) (*memLCD, *recordBus, *recordPin) {
	scs := &recordPin{}
	disp := &recordPin{}
	bus := &recordBus{scs: scs}
	return newMemLCD(bus, scs, disp, sharpmem.Config{Width: w, Height: h}), bus, disp
}

func TestMemLCDInitRequiresEnable(t *testing.T) {
	d, _, _ := newTestMemLCD(16, 2)
	if _, err := d.Init(); !errors.Is(err, ErrDisplayDisabled) {
		t.Fatalf("Init() before Enable err = %v, want ErrDisplayDisabled", err)
	}
}

func TestMemLCDSetupError(t *testing.T) {
	d, _, _ := newTestMemLCD(16, 2)
	want := errors.New("spi busy")
	d.setup = func() error { return want }
	if err := d.Enable(); err != nil {
		t.Fatalf("Enable() err = %v", err)
	}
	if _, err := d.Init(); !errors.Is(err, want) {
		t.Fatalf("Init() err = %v, want %v", err, want)
	}
}

func TestMemLCDFrames(t *testing.T) {
	d, bus, disp := newTestMemLCD(16, 2)
	if err := d.Enable(); err != nil {
		t.Fatalf("Enable() err = %v", err)
	}
	if !disp.high {
		t.Fatalf("DISP low after Enable")
	}
	fb, err := d.Init()
	if err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	if fb.Width() != 16 || fb.Height() != 2 || fb.Format() != PixelFormatMono1 {
		t.Fatalf("framebuffer = %dx%d format %d", fb.Width(), fb.Height(), fb.Format())
	}

	// Clear command with VCOM high.
	if got, want := bus.take(), []byte{0x06, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("init sent % x, want % x", got, want)
	}

	buf, stride := fb.Buffer(), fb.StrideBytes()
	MonoSet(buf, stride, 0, 0, false)
	MonoSet(buf, stride, 15, 1, false)
	if err := fb.Present(); err != nil {
		t.Fatalf("Present() err = %v", err)
	}
	want := []byte{
		0x01, 0x01, 0xFE, 0xFF, // write, VCOM low, line 1
		0x01, 0x02, 0xFF, 0x7F, // line 2
		0x00, 0x00, // trailer
	}
	if got := bus.take(); !bytes.Equal(got, want) {
		t.Fatalf("frame 1 sent % x, want % x", got, want)
	}

	MonoSet(buf, stride, 15, 1, true)
	if err := fb.Present(); err != nil {
		t.Fatalf("Present() err = %v", err)
	}
	want = []byte{
		0x03, 0x02, 0xFF, 0xFF, // write, VCOM high, only line 2 changed
		0x00, 0x00,
	}
	if got := bus.take(); !bytes.Equal(got, want) {
		t.Fatalf("frame 2 sent % x, want % x", got, want)
	}

	if err := fb.Present(); err != nil {
		t.Fatalf("Present() err = %v", err)
	}
	if got, want := bus.take(), []byte{0x00, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("unchanged frame sent % x, want % x", got, want)
	}

	if bus.deselect != 0 {
		t.Fatalf("%d transfers with SCS low", bus.deselect)
	}
	if bus.scs.high {
		t.Fatalf("SCS left high after transfer")
	}
}

func TestLSBFirstBusReversesBits(t *testing.T) {
	scs := &recordPin{high: true}
	inner := &recordBus{scs: scs}
	b := &lsbFirstBus{bus: inner}

	if err := b.Tx([]byte{0x01, 0x06, 0xFE}, nil); err != nil {
		t.Fatalf("Tx() err = %v", err)
	}
	if got, want := inner.take(), []byte{0x80, 0x60, 0x7F}; !bytes.Equal(got, want) {
		t.Fatalf("Tx() sent % x, want % x", got, want)
	}

	rx, err := b.Transfer(0x02)
	if err != nil {
		t.Fatalf("Transfer() err = %v", err)
	}
	if got := inner.take(); !bytes.Equal(got, []byte{0x40}) {
		t.Fatalf("Transfer() sent % x, want 40", got)
	}
	if rx != 0x02 {
		t.Fatalf("Transfer() = %#x, want 0x02", rx)
	}
}

func TestMemLCDWriteCommandLeadsOnMSBWire(t *testing.T) {
	scs := &recordPin{}
	inner := &recordBus{scs: scs}
	d := newMemLCD(&lsbFirstBus{bus: inner}, scs, &recordPin{}, sharpmem.Config{Width: 16, Height: 1})
	if err := d.Enable(); err != nil {
		t.Fatalf("Enable() err = %v", err)
	}
	fb, err := d.Init()
	if err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	inner.take()

	MonoSet(fb.Buffer(), fb.StrideBytes(), 0, 0, false)
	if err := fb.Present(); err != nil {
		t.Fatalf("Present() err = %v", err)
	}
	got := inner.take()
	// M0 (write) is the first bit shifted out, line 1 address LSB first.
	if len(got) < 2 || got[0] != 0x80 || got[1] != 0x80 {
		t.Fatalf("frame header % x, want 80 80", got)
	}
}
