package radio

import "fmt"

// Reset pulses the reset line and leaves the chip in its post-reset
// defaults. It is legal from any state.
//
// See Si47XX PROGRAMMING GUIDE; AN332 (REV 1.0).
func (s *Si4735Driver) Reset() (err error) {
	if s.pins == nil {
		return fmt.Errorf("reset: driver is not connected, call Start first")
	}

	// the first write puts the pin in output mode, held low to settle
	if err = s.pins.DigitalWrite(s.cfg.ResetPin, low); err != nil {
		return fmt.Errorf("reset pin %s: %w", s.cfg.ResetPin, err)
	}
	s.clock.Sleep(resetSettle)

	if err = s.pins.DigitalWrite(s.cfg.ResetPin, low); err != nil {
		return fmt.Errorf("reset pin %s: %w", s.cfg.ResetPin, err)
	}
	s.clock.Sleep(resetSettle)

	if err = s.pins.DigitalWrite(s.cfg.ResetPin, high); err != nil {
		return fmt.Errorf("reset pin %s: %w", s.cfg.ResetPin, err)
	}
	s.clock.Sleep(resetSettle)

	s.state = Reset
	s.patchLoaded = false
	s.patchAttempted = false
	return nil
}

// PowerUp sends POWER_UP with cfg and waits PowerUpDelay for the
// oscillator to settle before anything else may be sent. A wired mute pin is
// held for the whole transition. With the crystal oscillator the reference
// clock properties are set right after the delay.
//
// The chip must be in Reset or PoweredDown. It ends up in PatchMode when
// cfg.Patch is set, PoweredUp otherwise.
//
// See Si47XX PROGRAMMING GUIDE; AN332 (REV 1.0); pages 64, 129.
func (s *Si4735Driver) PowerUp(cfg PowerUpConfig) error {
	const op = "power up"
	if err := s.checkState(op, Reset, PoweredDown); err != nil {
		return err
	}

	if err := s.SetMute(true); err != nil {
		return err
	}

	args := cfg.Args()
	if err := s.sendCommand(op, command{CMD_POWER_UP, args[0], args[1]}); err != nil {
		return err
	}
	if err := s.waitToSend(op); err != nil {
		return err
	}
	s.clock.Sleep(s.cfg.PowerUpDelay)

	s.powerUp = cfg
	s.patchLoaded = false
	s.patchAttempted = false
	if cfg.Patch {
		s.state = PatchMode
	} else {
		s.state = PoweredUp
	}

	if err := s.SetMute(false); err != nil {
		return err
	}

	if cfg.Clock == CrystalOscillator {
		if err := s.setProperty(PROP_REFCLK_FREQ, s.cfg.RefClock); err != nil {
			return err
		}
		prescale := s.cfg.RefClockPrescale & 0x0FFF
		if s.cfg.RefClockSource == RefClockDCLK {
			prescale |= 1 << 12
		}
		if err := s.setProperty(PROP_REFCLK_PRESCALE, prescale); err != nil {
			return err
		}
	}

	if s.cfg.DebugMode {
		s.debugLog("Powered up: %s, %s receive, %s audio, patch %v\n", cfg.Clock, cfg.Function, cfg.Audio, cfg.Patch)
	}
	return nil
}

// PowerDown moves the device from powerup to powerdown mode. After it only
// PowerUp (or Reset) is accepted.
//
// See Si47XX PROGRAMMING GUIDE; AN332 (REV 1.0); pages 67, 132.
func (s *Si4735Driver) PowerDown() error {
	const op = "power down"
	if err := s.checkState(op, PoweredUp, PatchMode, Operational); err != nil {
		return err
	}

	if err := s.SetMute(true); err != nil {
		return err
	}

	if err := s.sendCommand(op, command{CMD_POWER_DOWN}); err != nil {
		return err
	}
	s.clock.Sleep(s.cfg.PowerDownDelay)

	s.state = PoweredDown
	s.patchLoaded = false
	s.patchAttempted = false
	return nil
}

// Resume hands the chip over to normal operation. From PatchMode it is only
// legal once a patch has been fully transferred.
func (s *Si4735Driver) Resume() error {
	const op = "resume"
	if err := s.checkState(op, PoweredUp, PatchMode); err != nil {
		return err
	}
	if s.state == PatchMode && !s.patchLoaded {
		return &StateError{Op: op, State: s.state}
	}

	if err := s.waitToSend(op); err != nil {
		return err
	}
	s.state = Operational
	return nil
}

// PowerUpConfig returns the configuration of the last successful PowerUp.
func (s *Si4735Driver) PowerUpConfig() PowerUpConfig {
	return s.powerUp
}

// SetMutePin sets the host pin that controls an external audio mute
// circuit, muted while the chip goes through power transitions to avoid the
// speaker pop. An empty pin disables it.
func (s *Si4735Driver) SetMutePin(pin string) {
	s.mutePin = pin
}

// SetMute turns the external mute circuit on or off. It does nothing when
// no mute pin is set.
func (s *Si4735Driver) SetMute(on bool) error {
	if s.mutePin == "" {
		return nil
	}
	if s.pins == nil {
		return fmt.Errorf("mute: driver is not connected, call Start first")
	}

	level := byte(low)
	if on {
		level = high
	}
	if err := s.pins.DigitalWrite(s.mutePin, level); err != nil {
		return fmt.Errorf("mute pin %s: %w", s.mutePin, err)
	}
	s.clock.Sleep(muteSettle)
	return nil
}
