package radio

import (
	"fmt"

	"ssbradio/patch"
)

// TransferPatch sends img to the patch RAM, one 8 byte line per bus
// transaction. The chip must be in PatchMode.
//
// A failed line aborts the transfer with a *BusError (or a *ChipError in
// handshake mode) naming the line. Nothing is rolled back: recover with
// PowerDown, PowerUp and a new TransferPatch from the first line. Once a
// transfer has sent its first line, further transfers are rejected until the
// next PowerUp or Reset.
//
// img is only read during the call and not retained.
//
// See Si47XX PROGRAMMING GUIDE; AN332 (REV 1.0) pages 64 and 215-220.
func (s *Si4735Driver) TransferPatch(img *patch.Image) error {
	const op = "transfer patch"
	if err := s.checkState(op, PatchMode); err != nil {
		return err
	}
	if s.patchAttempted {
		return &StateError{Op: op, State: s.state}
	}
	if img == nil {
		return fmt.Errorf("%s: patch image cannot be nil", op)
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dec := patch.NewDecoder(img)
	dec.Pad = s.cfg.PadFinalLine
	total := dec.Lines()

	if s.cfg.DebugMode {
		s.debugLog("Sending %v\n", img)
	}

	s.patchLoaded = false
	s.patchAttempted = true
	var buf [patch.LineSize]byte
	for n := 0; n < total; n++ {
		if err := s.write(op, n, dec.AppendLine(buf[:0], n)); err != nil {
			return err
		}

		if s.cfg.HandshakeTransfer {
			if err := s.pollStatus(op, n, s.cfg.HandshakeInterval); err != nil {
				return err
			}
		} else {
			s.clock.Sleep(s.cfg.LineDelay)
		}

		if s.cfg.OnPatchProgress != nil {
			s.cfg.OnPatchProgress(n+1, total)
		}
	}
	s.clock.Sleep(s.cfg.PatchSettleDelay)

	s.patchLoaded = true
	if s.cfg.DebugMode {
		s.debugLog("Patch transferred, %d lines\n", total)
	}
	return nil
}
