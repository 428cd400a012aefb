package pipeline

import "fmt"

// State is the lifecycle state of a tracked submission.
type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s != StatePending
}

type transitionEvent int

const (
	eventSucceed transitionEvent = iota
	eventFallback
	eventCancel
)

func (e transitionEvent) String() string {
	switch e {
	case eventSucceed:
		return "succeed"
	case eventFallback:
		return "fallback"
	case eventCancel:
		return "cancel"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

func transition(from State, ev transitionEvent) (State, error) {
	if from != StatePending {
		return from, fmt.Errorf("%w: %s on %s task", ErrInvalidTransition, ev, from)
	}
	switch ev {
	case eventSucceed:
		return StateResolved, nil
	case eventFallback:
		return StateFailed, nil
	case eventCancel:
		return StateCancelled, nil
	default:
		return from, fmt.Errorf("%w: unknown event %s", ErrInvalidTransition, ev)
	}
}
