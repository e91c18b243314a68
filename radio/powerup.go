package radio

import (
	"fmt"
	"strings"
)

// ClockSource selects where the chip takes its reference clock from (XOSCEN).
type ClockSource uint8

const (
	// ExternalClock uses an active clock fed into RCLK, crystal oscillator disabled.
	ExternalClock ClockSource = iota

	// CrystalOscillator uses the passive 32.768 kHz crystal.
	CrystalOscillator
)

// Function is the receiver the chip boots into (FUNC).
type Function uint8

const (
	// FMReceive boots the FM receiver (FUNC 0).
	FMReceive Function = iota

	// AMReceive boots the AM/SW/LW receiver (FUNC 1), the one the SSB patch
	// extends.
	AMReceive
)

// AudioMode selects the audio output pins (OPMODE).
type AudioMode uint8

const (
	// AnalogAudio routes audio to the analog LOUT/ROUT pins.
	AnalogAudio AudioMode = iota

	// DigitalAudio routes audio to the DOUT/DFS/DCLK digital interface.
	DigitalAudio
)

// RefClockSource selects the pin REFCLK_PRESCALE divides (RCLKSEL).
type RefClockSource uint8

const (
	// RefClockRCLK divides the clock on the RCLK pin.
	RefClockRCLK RefClockSource = iota

	// RefClockDCLK divides the digital audio bit clock on the DCLK pin.
	RefClockDCLK
)

// OPMODE values of POWER_UP ARG2.
const (
	opModeAnalog  = 0x05
	opModeDigital = 0x0B
)

// PowerUpConfig holds the arguments of the POWER_UP command.
//
// ATTENTION: AN383 rev 0.8 page 6 notes that crystal and digital audio
// mode cannot be used at the same time.
type PowerUpConfig struct {
	CTSInterrupt bool        `yaml:"cts_interrupt"`
	GPO2Output   bool        `yaml:"gpo2_output"`
	Patch        bool        `yaml:"patch"`
	Clock        ClockSource `yaml:"clock"`
	Function     Function    `yaml:"function"`
	Audio        AudioMode   `yaml:"audio"`
}

// Args serialises the configuration into ARG1 and ARG2 of POWER_UP.
//
//	ARG1: CTSIEN(7) GPO2OEN(6) PATCH(5) XOSCEN(4) FUNC(3:0)
//	ARG2: OPMODE
func (c PowerUpConfig) Args() [2]byte {
	var arg1 byte
	if c.CTSInterrupt {
		arg1 |= 1 << 7
	}
	if c.GPO2Output {
		arg1 |= 1 << 6
	}
	if c.Patch {
		arg1 |= 1 << 5
	}
	if c.Clock == CrystalOscillator {
		arg1 |= 1 << 4
	}
	arg1 |= byte(c.Function) & 0x0F

	arg2 := byte(opModeAnalog)
	if c.Audio == DigitalAudio {
		arg2 = opModeDigital
	}
	return [2]byte{arg1, arg2}
}

func (c ClockSource) String() string {
	if c == CrystalOscillator {
		return "crystal"
	}
	return "external"
}

// UnmarshalText accepts "external" or "crystal".
func (c *ClockSource) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "external", "rclk":
		*c = ExternalClock
	case "crystal", "xosc":
		*c = CrystalOscillator
	default:
		return fmt.Errorf("unknown clock source %q", text)
	}
	return nil
}

func (f Function) String() string {
	if f == AMReceive {
		return "am"
	}
	return "fm"
}

// UnmarshalText accepts "fm" or "am".
func (f *Function) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fm":
		*f = FMReceive
	case "am":
		*f = AMReceive
	default:
		return fmt.Errorf("unknown function %q", text)
	}
	return nil
}

func (a AudioMode) String() string {
	if a == DigitalAudio {
		return "digital"
	}
	return "analog"
}

// UnmarshalText accepts "analog" or "digital".
func (a *AudioMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "analog":
		*a = AnalogAudio
	case "digital":
		*a = DigitalAudio
	default:
		return fmt.Errorf("unknown audio mode %q", text)
	}
	return nil
}

func (r RefClockSource) String() string {
	if r == RefClockDCLK {
		return "dclk"
	}
	return "rclk"
}

// UnmarshalText accepts "rclk" or "dclk".
func (r *RefClockSource) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rclk":
		*r = RefClockRCLK
	case "dclk":
		*r = RefClockDCLK
	default:
		return fmt.Errorf("unknown reference clock source %q", text)
	}
	return nil
}
