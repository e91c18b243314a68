package radio

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/warthog618/go-gpiocdev"
)

// CdevPins drives the reset and mute lines through the Linux GPIO
// character device. Pins are line offsets on the chip, e.g. "17".
type CdevPins struct {
	chip  string
	lines map[string]*gpiocdev.Line
}

// NewCdevPins uses the GPIO chip at path, e.g. "gpiochip0".
func NewCdevPins(chip string) *CdevPins {
	return &CdevPins{
		chip:  chip,
		lines: make(map[string]*gpiocdev.Line),
	}
}

// DigitalWrite requests pin as an output on first use, then sets its level.
func (c *CdevPins) DigitalWrite(pin string, level byte) error {
	value := 0
	if level != low {
		value = 1
	}

	if line, ok := c.lines[pin]; ok {
		return line.SetValue(value)
	}

	offset, err := strconv.Atoi(pin)
	if err != nil {
		return fmt.Errorf("invalid GPIO line %q: %w", pin, err)
	}
	line, err := gpiocdev.RequestLine(c.chip, offset,
		gpiocdev.AsOutput(value),
		gpiocdev.WithConsumer("si4735"),
	)
	if err != nil {
		return fmt.Errorf("failed to request GPIO line %d on %s: %w", offset, c.chip, err)
	}
	c.lines[pin] = line
	return nil
}

// Close releases all requested lines.
func (c *CdevPins) Close() error {
	var result error
	for pin, line := range c.lines {
		if err := line.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close GPIO line %s: %w", pin, err))
		}
		delete(c.lines, pin)
	}
	return result
}
