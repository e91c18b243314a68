package radio

import "fmt"

// State is the lifecycle state of the chip as tracked by the driver.
type State int

// Lifecycle states. PoweredUp and PatchMode are the same electrical state;
// PatchMode means the chip was powered up with the PATCH bit and is
// waiting for (or holding) a patch that has not been committed with Resume.
const (
	Unpowered State = iota
	Reset
	PoweredDown
	PoweredUp
	PatchMode
	Operational
)

var stateNames = [...]string{
	Unpowered:   "unpowered",
	Reset:       "reset",
	PoweredDown: "powered down",
	PoweredUp:   "powered up",
	PatchMode:   "patch mode",
	Operational: "operational",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// powered reports whether the chip accepts commands other than power up.
func (s State) powered() bool {
	return s == PoweredUp || s == PatchMode || s == Operational
}

// State returns the current lifecycle state.
func (s *Si4735Driver) State() State {
	return s.state
}

func (s *Si4735Driver) checkState(op string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return &StateError{Op: op, State: s.state}
}
