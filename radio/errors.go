package radio

import (
	"errors"
	"fmt"
)

// Error kinds reported by the driver. Match them with errors.Is.
var (
	// ErrInvalidStateTransition is returned when an operation is not legal in
	// the current lifecycle state. Nothing reaches the bus in that case.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrBusTransactionFailed is returned when the transport fails a transaction.
	ErrBusTransactionFailed = errors.New("bus transaction failed")

	// ErrChipReportedError is returned when the status byte has the error bit
	// set or never reports clear to send.
	ErrChipReportedError = errors.New("chip reported error")
)

// StateError reports an operation attempted in the wrong lifecycle state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: not allowed while %v", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidStateTransition }

// BusError reports a failed bus transaction. Line is the patch line being
// written, or -1 outside of a patch transfer.
type BusError struct {
	Op   string
	Line int
	Err  error
}

func (e *BusError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s: line %d: %v: %v", e.Op, e.Line, ErrBusTransactionFailed, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrBusTransactionFailed, e.Err)
}

func (e *BusError) Unwrap() []error { return []error{ErrBusTransactionFailed, e.Err} }

// ChipError reports a status byte that did not allow the driver to go on.
type ChipError struct {
	Op     string
	Line   int
	Status byte
}

func (e *ChipError) Error() string {
	reason := "error bit set"
	if e.Status&STATUS_ERR == 0 {
		reason = "not clear to send"
	}
	if e.Line >= 0 {
		return fmt.Sprintf("%s: line %d: %s (status 0x%02X)", e.Op, e.Line, reason, e.Status)
	}
	return fmt.Sprintf("%s: %s (status 0x%02X)", e.Op, reason, e.Status)
}

func (e *ChipError) Unwrap() error { return ErrChipReportedError }
