// Package radio implements the power lifecycle and the patch loader for the
// Silicon Labs Si4735 AM/FM/SW/LW receiver, and the other Si473x chips that
// take an SSB/NBFM patch.
//
// The patch lives in volatile RAM, so it has to be transferred every time
// the chip is powered up:
//
//	Reset -> PowerUp(Patch: true) -> TransferPatch -> Resume -> ... -> PowerDown
//
// The main implementation is under the Si4735Driver and it requires
// some additional configuration via Si4735Config structure.
//
// The receiver library this driver follows can be found at:
//   - C++: https://github.com/pu2clr/SI4735 (MIT License)
//
// To read about the specifications of the receiver, read the following documents:
// https://www.silabs.com/documents/public/data-sheets/Si4730-31-34-35-D60.pdf
// https://www.silabs.com/documents/public/application-notes/AN332.pdf
package radio

import (
	"fmt"
	"io"
	"time"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/drivers/i2c"
)

const (
	low  = 0x0
	high = 0x1
)

// Misc constants.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	// Address is the device default address if SEN is low.
	Address = 0x11

	// AlternativeAddress if SEN is high.
	AlternativeAddress = 0x63
)

// Status bits returned by the chip after every command.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	// STATUS_CTS is set when the chip is clear to accept the next command.
	STATUS_CTS = 0x80

	// STATUS_ERR is set when the previous command failed.
	STATUS_ERR = 0x40
)

// Different command identifiers that the receiver supports and this driver uses.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	// CMD_POWER_UP commands the device power up and mode selection.
	CMD_POWER_UP = 0x01

	// CMD_GET_REV command returns revision information on the device.
	CMD_GET_REV = 0x10

	// CMD_POWER_DOWN commands the device to power down.
	CMD_POWER_DOWN = 0x11

	// CMD_SET_PROPERTY sets the value of a property.
	CMD_SET_PROPERTY = 0x12

	// CMD_GET_PROPERTY retrieves a property's value.
	CMD_GET_PROPERTY = 0x13

	// CMD_GET_INT_STATUS read interrupt status bits.
	CMD_GET_INT_STATUS = 0x14

	// CMD_PATCH_ARGS starts the patch lines listed in a compressed patch index.
	CMD_PATCH_ARGS = 0x15

	// CMD_PATCH_DATA starts every other patch line.
	CMD_PATCH_DATA = 0x16
)

// Properties this driver sets.
//
//goland:noinspection GoUnusedConst,GoUnnecessarilyExportedIdentifiers,GoSnakeCaseUsage
const (
	// PROP_REFCLK_FREQ sets frequency of the reference clock in Hz.
	// The range is 31130 to 34406 Hz.
	// Default is 32768 Hz.
	PROP_REFCLK_FREQ = 0x0201

	// PROP_REFCLK_PRESCALE sets the prescaler value for the reference clock.
	// Bit 12 selects DCLK instead of RCLK as the prescaler input.
	PROP_REFCLK_PRESCALE = 0x0202
)

const (
	resetSettle = 10 * time.Millisecond
	muteSettle  = 300 * time.Microsecond
)

// Define the format for the command to send to the receiver
type command []uint8

// Si4735Driver holds the implementation to talk to a Si4735 receiver.
//
// A driver is owned by a single caller: none of its methods may run
// concurrently, since a bus transaction sequence must never be interleaved
// with another one to the same chip.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
type Si4735Driver struct {
	name string

	i2cAddr      int
	bus          Bus
	pins         Pins
	i2cConnector i2c.Connector
	i2c.Config

	cfg     Si4735Config
	clock   Clock
	mutePin string

	state          State
	powerUp        PowerUpConfig
	patchLoaded    bool
	patchAttempted bool
}

// Name of our device.
func (s *Si4735Driver) Name() string {
	return s.name
}

// SetName set the name of our device.
func (s *Si4735Driver) SetName(name string) {
	s.name = name
}

// Start connects to the device, then resets and powers it up with the
// configured PowerUpConfig. When the configuration carries a patch and asks
// for patch mode, the patch is transferred before the chip is resumed.
func (s *Si4735Driver) Start() error {
	if err := s.connect(); err != nil {
		return err
	}
	return s.begin()
}

// Halt stops the device in a graceful way.
func (s *Si4735Driver) Halt() error {
	if !s.state.powered() {
		return nil
	}
	return s.PowerDown()
}

// Connection retrieves the i2c connection to the device.
func (s *Si4735Driver) Connection() gobot.Connection {
	conn, _ := s.i2cConnector.(gobot.Connection)
	return conn
}

func (s *Si4735Driver) connect() error {
	if s.bus != nil {
		return nil
	}
	if s.i2cConnector == nil {
		return fmt.Errorf("no i2c connector configured")
	}

	dw, ok := s.i2cConnector.(gpio.DigitalWriter)
	if !ok {
		return fmt.Errorf("i2c connector does not have a digital writer capability")
	}

	bus := s.GetBusOrDefault(s.i2cConnector.GetDefaultBus())
	conn, err := s.i2cConnector.GetConnection(s.GetAddressOrDefault(s.i2cAddr), bus)
	if err != nil {
		return err
	}

	s.bus = conn
	s.pins = dw
	return nil
}

// Resets the chip and powers it up, loading the patch when configured.
func (s *Si4735Driver) begin() error {
	if err := s.Reset(); err != nil {
		return err
	}
	if err := s.PowerUp(s.cfg.PowerUp); err != nil {
		return err
	}

	if s.cfg.DebugMode {
		rev, err := s.Revision()
		if err != nil {
			return err
		}
		s.debugLog("%v\n", rev)
	}

	if s.state == PatchMode {
		if s.cfg.Patch == nil {
			s.cfg.Log("Powered up in patch mode without a patch, call TransferPatch and Resume\n")
			return nil
		}
		if err := s.TransferPatch(s.cfg.Patch); err != nil {
			return err
		}
	}
	return s.Resume()
}

// Revision holds the answer to GET_REV.
type Revision struct {
	PartNumber     uint8
	FirmwareMajor  byte
	FirmwareMinor  byte
	PatchID        uint16
	ComponentMajor byte
	ComponentMinor byte
	ChipRevision   byte
}

func (r Revision) String() string {
	return fmt.Sprintf("Part # Si47%d firmware %c.%c component %c.%c patch 0x%04X chip rev %c",
		r.PartNumber, r.FirmwareMajor, r.FirmwareMinor, r.ComponentMajor, r.ComponentMinor, r.PatchID, r.ChipRevision)
}

// Revision gets the hardware revision code from the device using
// CMD_GET_REV. After a patch transfer PatchID identifies the loaded patch.
func (s *Si4735Driver) Revision() (Revision, error) {
	const op = "get revision"
	if err := s.checkState(op, PoweredUp, PatchMode, Operational); err != nil {
		return Revision{}, err
	}

	if err := s.sendCommand(op, command{CMD_GET_REV}); err != nil {
		return Revision{}, err
	}
	if err := s.waitToSend(op); err != nil {
		return Revision{}, err
	}

	values, err := s.buffRead(op, 9)
	if err != nil {
		return Revision{}, err
	}

	return Revision{
		PartNumber:     values[1],
		FirmwareMajor:  values[2],
		FirmwareMinor:  values[3],
		PatchID:        uint16(values[4])<<8 | uint16(values[5]),
		ComponentMajor: values[6],
		ComponentMinor: values[7],
		ChipRevision:   values[8],
	}, nil
}

// Set chip property over I2C.
func (s *Si4735Driver) setProperty(property uint16, value uint16) error {
	if s.cfg.DebugMode {
		s.debugLog("Set Prop 0x%x = 0x%x (%d)\n", property, value, value)
	}

	return s.sendCommand("set property", command{
		CMD_SET_PROPERTY,
		0,
		uint8(property >> 8),
		uint8(property & 0xFF),
		uint8(value >> 8),
		uint8(value & 0xFF),
	})
}

// Send command to the radio chip once it is clear to send.
func (s *Si4735Driver) sendCommand(op string, cmd command) error {
	if err := s.waitToSend(op); err != nil {
		return err
	}

	if s.cfg.DebugMode {
		s.debugLog("*** Command: %s\n", s.sliceToString(cmd))
	}
	return s.write(op, -1, cmd)
}

// write sends b as one bus transaction.
func (s *Si4735Driver) write(op string, line int, b []byte) error {
	n, err := s.bus.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &BusError{Op: op, Line: line, Err: err}
	}
	return nil
}

// waitToSend blocks until the chip accepts a new command, either by
// waiting CTSDelay or by polling the status byte.
func (s *Si4735Driver) waitToSend(op string) error {
	if !s.cfg.PollCTS {
		s.clock.Sleep(s.cfg.CTSDelay)
		return nil
	}
	return s.pollStatus(op, -1, s.cfg.CTSDelay)
}

// Wait for status CTS bit, failing on the ERR bit.
func (s *Si4735Driver) pollStatus(op string, line int, interval time.Duration) error {
	var status byte
	for i := 0; i < s.cfg.CTSPollLimit; i++ {
		s.clock.Sleep(interval)

		var err error
		status, err = s.bus.ReadByte()
		if err != nil {
			return &BusError{Op: op, Line: line, Err: err}
		}
		if s.cfg.DebugMode {
			s.debugLog("status: %x (%d)\n", status, status)
		}
		if status&STATUS_ERR != 0 {
			return &ChipError{Op: op, Line: line, Status: status}
		}
		if status&STATUS_CTS != 0 {
			return nil
		}
	}
	return &ChipError{Op: op, Line: line, Status: status}
}

func (s *Si4735Driver) buffRead(op string, size int) ([]byte, error) {
	values := make([]byte, size)
	nValues, err := s.bus.Read(values)
	if err != nil {
		return nil, &BusError{Op: op, Line: -1, Err: err}
	}

	if nValues != size {
		return nil, &BusError{Op: op, Line: -1, Err: fmt.Errorf("failed to read %d bytes from the line, read %d -> %s", size, nValues, s.sliceToString(values[:nValues]))}
	}

	if s.cfg.DebugMode {
		s.debugLog("read %d bytes: %s", size, s.sliceToString(values))
	}
	return values, nil
}

func (s *Si4735Driver) debugLog(format string, v ...interface{}) {
	s.cfg.DebugLog(format, v...)
}

func (s *Si4735Driver) sliceToString(val []byte) string {
	res := ""
	for idx := range val {
		res += fmt.Sprintf("[%d]=0x%x(%d) ", idx, val[idx], val[idx])
	}
	return res
}

// NewSi4735Driver creates a new GoBot driver for our receiver. The bus
// connection and the reset/mute pins come from the connector when the
// driver is started.
func NewSi4735Driver(connector i2c.Connector, cfg Si4735Config, options ...func(i2c.Config)) (*Si4735Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := newDriver(cfg)
	res.i2cConnector = connector

	for _, option := range options {
		option(res)
	}

	return res, nil
}

// NewSi4735 creates a driver on an already open bus, for hosts that do not
// go through a gobot adaptor (see PeriphBus, PeriphPins and CdevPins).
func NewSi4735(bus Bus, pins Pins, cfg Si4735Config) (*Si4735Driver, error) {
	if bus == nil || pins == nil {
		return nil, fmt.Errorf("bus and pins cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := newDriver(cfg)
	res.bus = bus
	res.pins = pins
	return res, nil
}

func newDriver(cfg Si4735Config) *Si4735Driver {
	return &Si4735Driver{
		name:    gobot.DefaultName("Si4735Driver"),
		Config:  i2c.NewConfig(),
		i2cAddr: cfg.Address,
		cfg:     cfg,
		clock:   cfg.Clock,
		mutePin: cfg.MutePin,
		state:   Unpowered,
	}
}
