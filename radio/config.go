package radio

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ssbradio/patch"
)

// Timing defaults, see AN332 and the datasheet power-up timing.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
const (
	DefaultPowerUpDelay      = 500 * time.Millisecond
	DefaultPowerDownDelay    = 2500 * time.Microsecond
	DefaultCTSDelay          = 300 * time.Microsecond
	DefaultCTSPollLimit      = 1000
	DefaultLineDelay         = 300 * time.Microsecond
	DefaultHandshakeInterval = 150 * time.Microsecond
	DefaultPatchSettleDelay  = 250 * time.Microsecond

	// DefaultRefClock is the frequency of the usual 32.768 kHz crystal.
	DefaultRefClock = 32768
)

// Si4735Config holds the configuration needed by Si4735Driver.
type Si4735Config struct {
	Address  int    `yaml:"address"`
	ResetPin string `yaml:"reset_pin"`
	MutePin  string `yaml:"mute_pin"`

	PowerUp PowerUpConfig `yaml:"power_up"`

	// Reference clock, only sent when PowerUp.Clock is CrystalOscillator.
	RefClock         uint16         `yaml:"ref_clock"`
	RefClockPrescale uint16         `yaml:"ref_clock_prescale"`
	RefClockSource   RefClockSource `yaml:"ref_clock_source"`

	// PollCTS reads the status byte before every command instead of
	// waiting CTSDelay.
	PollCTS      bool          `yaml:"poll_cts"`
	CTSDelay     time.Duration `yaml:"cts_delay"`
	CTSPollLimit int           `yaml:"cts_poll_limit"`

	PowerUpDelay   time.Duration `yaml:"power_up_delay"`
	PowerDownDelay time.Duration `yaml:"power_down_delay"`

	// HandshakeTransfer polls the status byte after every patch line
	// instead of waiting LineDelay. Slower, but a chip error stops the
	// transfer at the failing line.
	HandshakeTransfer bool          `yaml:"handshake_transfer"`
	HandshakeInterval time.Duration `yaml:"handshake_interval"`
	LineDelay         time.Duration `yaml:"line_delay"`
	PatchSettleDelay  time.Duration `yaml:"patch_settle_delay"`
	PadFinalLine      bool          `yaml:"pad_final_line"`

	// PatchFile is loaded into Patch by LoadConfig.
	PatchFile string       `yaml:"patch_file"`
	Patch     *patch.Image `yaml:"-"`

	DebugMode bool `yaml:"debug_mode"`

	Clock           Clock                                 `yaml:"-"`
	OnPatchProgress func(line, total int)                 `yaml:"-"`
	DebugLog        func(format string, v ...interface{}) `yaml:"-"`
	Log             func(format string, v ...interface{}) `yaml:"-"`
}

// Validate ensures that our Si4735Driver configuration is valid and fills in defaults.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
func (c *Si4735Config) Validate() error {
	if c.Log == nil {
		panic("logging function cannot be nil. Use something like log.Printf or an empty function instead")
	}
	if c.DebugMode && c.DebugLog == nil {
		panic("cannot use debugging mode without configuring a DebugLog function, e.g. log.Printf")
	}

	if c.Address == 0 {
		c.Address = Address
	}
	if c.Address != Address && c.Address != AlternativeAddress {
		return fmt.Errorf("i2c address 0x%x is neither 0x%x (SEN low) nor 0x%x (SEN high)", c.Address, Address, AlternativeAddress)
	}

	if c.ResetPin == "" {
		c.ResetPin = "29"
	}
	if c.ResetPin == c.MutePin {
		return fmt.Errorf("reset and mute cannot share pin %s", c.ResetPin)
	}

	if c.RefClock == 0 {
		c.RefClock = DefaultRefClock
	}
	if c.RefClock < 31130 || c.RefClock > 34406 {
		c.Log("Reference clock %d Hz not in 31130 ... 34406 Hz bounds, defaulting to %d\n", c.RefClock, DefaultRefClock)
		c.RefClock = DefaultRefClock
	}
	if c.RefClockPrescale == 0 {
		c.RefClockPrescale = 1
	}
	if c.RefClockPrescale > 4095 {
		return fmt.Errorf("reference clock prescaler %d not in 1 ... 4095 bounds", c.RefClockPrescale)
	}

	if c.PowerUp.Clock == CrystalOscillator && c.PowerUp.Audio == DigitalAudio {
		c.Log("Crystal oscillator and digital audio cannot be used at the same time, check the board wiring\n")
	}

	defaultDuration(&c.CTSDelay, DefaultCTSDelay)
	defaultDuration(&c.PowerUpDelay, DefaultPowerUpDelay)
	defaultDuration(&c.PowerDownDelay, DefaultPowerDownDelay)
	defaultDuration(&c.LineDelay, DefaultLineDelay)
	defaultDuration(&c.HandshakeInterval, DefaultHandshakeInterval)
	defaultDuration(&c.PatchSettleDelay, DefaultPatchSettleDelay)
	if c.CTSPollLimit <= 0 {
		c.CTSPollLimit = DefaultCTSPollLimit
	}

	if c.Clock == nil {
		c.Clock = sleeper{}
	}

	if c.Patch != nil {
		if err := c.Patch.Validate(); err != nil {
			return err
		}
		if !c.PowerUp.Patch {
			c.Log("A patch is configured but power_up.patch is off, the patch will not be sent\n")
		}
	}

	return nil
}

func defaultDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// LoadConfig reads a YAML configuration file, and the patch it names if any.
// Log functions are not part of the file and must be set before use.
func LoadConfig(path string) (Si4735Config, error) {
	var cfg Si4735Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.PatchFile != "" {
		if cfg.Patch, err = patch.FromFile(cfg.PatchFile); err != nil {
			return cfg, fmt.Errorf("load patch: %w", err)
		}
	}
	return cfg, nil
}
