package monitor

import (
	"fmt"
	"strings"
)

// State is a classification label.
type State string

// The closed set of states. StateNone means nothing has been classified yet.
const (
	StateNone      State = ""
	StateRest      State = "REST"
	StateIndex     State = "INDEX"
	StateMiddle    State = "MIDDLE"
	StateMovement  State = "MOVEMENT"
	StateUncertain State = "UNCERTAIN"
)

// States lists every state a rule or fallback may name.
var States = []State{StateRest, StateIndex, StateMiddle, StateMovement, StateUncertain}

// ParseState accepts a state name in any case.
func ParseState(s string) (State, error) {
	name := State(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range States {
		if st == name {
			return st, nil
		}
	}
	return StateNone, fmt.Errorf("unknown state %q (want one of %s)", s, joinStates(States))
}

func joinStates(states []State) string {
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// String returns the state name, or "waiting" before the first classification.
func (s State) String() string {
	if s == StateNone {
		return "waiting"
	}
	return string(s)
}

// Description is the human-readable form shown next to the state.
func (s State) Description() string {
	switch s {
	case StateRest:
		return "hand at rest"
	case StateIndex:
		return "index finger"
	case StateMiddle:
		return "middle finger"
	case StateMovement:
		return "movement detected"
	case StateUncertain:
		return "no clear class"
	default:
		return "waiting for data"
	}
}

// Status is the current classification plus the text shown for it.
type Status struct {
	State State
	Text  string
	// Seq is the Store sequence number the status was computed at.
	Seq uint64
}

// LinkState is the health of the sensor link as seen by the render side.
type LinkState int

const (
	LinkConnecting LinkState = iota
	LinkUp
	LinkFailed // never opened
	LinkLost   // dropped mid-session
	LinkEnded  // a replay or stdin reached its end
)

// String returns a human-readable link state.
func (l LinkState) String() string {
	switch l {
	case LinkConnecting:
		return "connecting"
	case LinkUp:
		return "live"
	case LinkFailed:
		return "failed"
	case LinkLost:
		return "lost"
	case LinkEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Broken reports whether the link needs a visible warning.
func (l LinkState) Broken() bool {
	return l == LinkFailed || l == LinkLost
}
