package testsupport

import (
	"sync"
	"testing"
	"time"

	"nutrilog/internal/events"
)

// EventRecorder captures every event published on a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	signal chan struct{}
}

// RecordEvents subscribes a recorder to bus for the lifetime of the test.
func RecordEvents(t testing.TB, bus *events.Bus) *EventRecorder {
	t.Helper()

	r := &EventRecorder{signal: make(chan struct{}, 1)}
	sub := bus.SubscribeFunc(func(ev events.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
		select {
		case r.signal <- struct{}{}:
		default:
		}
	})
	t.Cleanup(sub.Cancel)
	return r
}

// Events returns a copy of the recorded events in delivery order.
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// WaitFor blocks until match accepts a recorded event, failing the test
// after timeout.
func (r *EventRecorder) WaitFor(t testing.TB, timeout time.Duration, match func(events.Event) bool) events.Event {
	t.Helper()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		for _, ev := range r.Events() {
			if match(ev) {
				return ev
			}
		}
		select {
		case <-r.signal:
		case <-deadline.C:
			t.Fatalf("no matching event within %s; got %d events", timeout, len(r.Events()))
			return nil
		}
	}
}
