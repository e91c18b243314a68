package radio

import (
	"io"
	"time"
)

// Bus is the two-wire link to one chip. Every Write is one complete bus
// transaction (start, address, bytes, stop); ReadByte reads the status byte.
//
// gobot's i2c.Connection satisfies it directly.
type Bus interface {
	io.ReadWriter
	ReadByte() (byte, error)
}

// Pins drives the GPIO lines wired to the chip. Implementations put the pin
// in output mode on first use.
//
// gobot's gpio.DigitalWriter satisfies it directly.
type Pins interface {
	DigitalWrite(pin string, level byte) error
}

// Clock provides the blocking waits the chip timing needs.
type Clock interface {
	Sleep(d time.Duration)
}

type sleeper struct{}

func (sleeper) Sleep(d time.Duration) { time.Sleep(d) }
