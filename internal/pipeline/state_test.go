package pipeline

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from State
		ev   transitionEvent
		want State
	}{
		{StatePending, eventSucceed, StateResolved},
		{StatePending, eventFallback, StateFailed},
		{StatePending, eventCancel, StateCancelled},
	}
	for _, tc := range tests {
		got, err := transition(tc.from, tc.ev)
		if err != nil {
			t.Fatalf("%s on %s: %v", tc.ev, tc.from, err)
		}
		if got != tc.want {
			t.Fatalf("%s on %s = %s, want %s", tc.ev, tc.from, got, tc.want)
		}
	}
}

func TestTerminalStatesRejectEveryEvent(t *testing.T) {
	for _, from := range []State{StateResolved, StateFailed, StateCancelled} {
		if !from.Terminal() {
			t.Fatalf("%s should be terminal", from)
		}
		for _, ev := range []transitionEvent{eventSucceed, eventFallback, eventCancel} {
			got, err := transition(from, ev)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s on %s: expected ErrInvalidTransition, got %v", ev, from, err)
			}
			if got != from {
				t.Fatalf("%s on %s changed state to %s", ev, from, got)
			}
		}
	}
	if StatePending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
}
