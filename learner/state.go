package learner

import (
	"fmt"

	"github.com/katalvlaran/ssvm/inference"
)

// State is the driver state.
type State int

const (
	// RunningApproximate evaluates examples with the approximate oracle.
	RunningApproximate State = iota
	// RunningExact evaluates examples with the exact oracle.
	RunningExact
	// Converged: a clean exact pass certified optimality within Tol.
	Converged
	// MaxIterReached: the pass cap was hit first.
	MaxIterReached
)

var stateNames = [...]string{
	RunningApproximate: "running_approximate",
	RunningExact:       "running_exact",
	Converged:          "converged",
	MaxIterReached:     "max_iter_reached",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further pass runs from s.
func (s State) Terminal() bool { return s == Converged || s == MaxIterReached }

// Event is the outcome of a pass as seen by the state machine.
type Event int

const (
	// EventViolations: the pass added at least one constraint.
	EventViolations Event = iota
	// EventClean: the pass added nothing and evaluated every example.
	EventClean
	// EventIncomplete: the pass added nothing but skipped examples after oracle failures.
	EventIncomplete
	// EventIterCap: the pass cap was reached.
	EventIterCap
)

var eventNames = [...]string{
	EventViolations: "violations",
	EventClean:      "clean",
	EventIncomplete: "incomplete",
	EventIterCap:    "iter_cap",
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// transitions is the complete transition table. Terminal states accept no event.
var transitions = map[State]map[Event]State{
	RunningApproximate: {
		EventViolations: RunningApproximate,
		EventClean:      RunningExact,
		EventIncomplete: RunningExact,
		EventIterCap:    MaxIterReached,
	},
	RunningExact: {
		EventViolations: RunningExact,
		EventClean:      Converged,
		EventIncomplete: RunningExact,
		EventIterCap:    MaxIterReached,
	},
}

// Next returns the successor of s under e.
// Returns ErrInvalidTransition for terminal states and unknown events.
func Next(s State, e Event) (State, error) {
	to, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}

	return to, nil
}

// machine tracks the run's state and the single approximate-to-exact switch.
type machine struct {
	state      State
	mode       inference.Mode
	switchedAt int // pass of the switch, 0 if none
}

func newMachine(exact bool) *machine {
	if exact {
		return &machine{state: RunningExact, mode: inference.Exact}
	}
	return &machine{state: RunningApproximate, mode: inference.Approximate}
}

// fire applies e after pass iter and reports whether the mode switched.
func (m *machine) fire(e Event, iter int) (switched bool, err error) {
	to, err := Next(m.state, e)
	if err != nil {
		return false, err
	}
	if m.state == RunningApproximate && to == RunningExact {
		m.switchedAt = iter
		m.mode = inference.Exact
		switched = true
	}
	m.state = to

	return switched, nil
}
