//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/sharpmem"
)

const (
	// The RP2040 TIMER is a free-running 64-bit microsecond counter with
	// alarms. The overflow interrupt is modelled on top of it as a 16-bit
	// counter on the 1 MHz timebase; Prescale and Top only set the period.
	tinyGoTimerClockHz = 1_000_000
	tinyGoTimerBits    = 16
)

type tinyGoHAL struct {
	logger *uartLogger
	disp   *memLCD
	timer  *swTimer
}

// New returns a Pico HAL with a Sharp LS013B7DH03 on SPI0.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// LCD: SCK GP18, SDO GP19, SCS GP17, DISP GP20.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	scs, disp := machine.GP17, machine.GP20
	scs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	scs.Low()
	disp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	disp.Low()

	// The PL022 has no LSB-first mode.
	spi := machine.SPI0
	lcd := newMemLCD(&lsbFirstBus{bus: spi}, scs, disp, sharpmem.ConfigLS013B7DH03)
	lcd.settle = time.Millisecond
	lcd.setup = func() error {
		return spi.Configure(machine.SPIConfig{
			SCK:       machine.GP18,
			SDO:       machine.GP19,
			Frequency: 2_000_000,
			Mode:      0,
		})
	}

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		disp:   lcd,
		timer:  newSWTimer(tinyGoTimerClockHz, tinyGoTimerBits, timeTicker),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Display() Display { return h.disp }
func (h *tinyGoHAL) Timer() Timer     { return h.timer }
