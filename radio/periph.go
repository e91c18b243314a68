package radio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphBus is a Bus on top of a periph.io I2C bus.
type PeriphBus struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// OpenPeriphBus initialises the periph.io host drivers and opens the named
// I2C bus ("" for the first one) for the chip at addr.
func OpenPeriphBus(name string, addr uint16) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", name, err)
	}

	return &PeriphBus{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// Write sends b in a single transaction.
func (p *PeriphBus) Write(b []byte) (int, error) {
	return p.dev.Write(b)
}

// Read reads len(b) bytes in a single transaction.
func (p *PeriphBus) Read(b []byte) (int, error) {
	if err := p.dev.Tx(nil, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// ReadByte reads the status byte.
func (p *PeriphBus) ReadByte() (byte, error) {
	var status [1]byte
	if err := p.dev.Tx(nil, status[:]); err != nil {
		return 0, err
	}
	return status[0], nil
}

// Close releases the I2C bus.
func (p *PeriphBus) Close() error {
	return p.bus.Close()
}

// PeriphPins drives pins looked up by name in the periph.io registry
// ("GPIO17", "17", ...). host.Init must have run, OpenPeriphBus does it.
type PeriphPins struct{}

// DigitalWrite sets pin as an output at level.
func (PeriphPins) DigitalWrite(pin string, level byte) error {
	p := gpioreg.ByName(pin)
	if p == nil {
		return fmt.Errorf("unknown GPIO pin %q", pin)
	}
	return p.Out(gpio.Level(level != low))
}
