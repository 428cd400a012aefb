package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"nutrilog/internal/logging"
)

// Bus delivers events to subscribers in publish order.
type Bus struct {
	logger *slog.Logger

	mu       sync.Mutex
	subs     []*Subscription
	queue    []Event
	draining bool

	// enqueued and delivered count events; Drain waits on idle for them.
	enqueued  uint64
	delivered uint64
	idle      *sync.Cond
}

// NewBus returns an empty bus. A nil logger discards panic reports.
func NewBus(logger *slog.Logger) *Bus {
	b := &Bus{logger: logging.NewComponentLogger(logger, "events")}
	b.idle = sync.NewCond(&b.mu)
	return b
}

// Subscription is a registered listener.
type Subscription struct {
	id      string
	bus     *Bus
	deliver func(Event)
	kinds   []Kind
	active  atomic.Bool
	once    sync.Once
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() string { return s.id }

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool { return s.active.Load() }

// Cancel unregisters the subscription. It is safe to call more than once and
// from inside a handler; no event is delivered to it afterwards.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.active.Store(false)
		s.bus.remove(s)
	})
}

func (s *Subscription) wants(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	for _, filter := range s.kinds {
		if k.Matches(filter) {
			return true
		}
	}
	return false
}

// Subscribe registers h for every event, or only for kinds when given.
func (b *Bus) Subscribe(h Handler, kinds ...Kind) *Subscription {
	return b.add(func(ev Event) { ev.dispatch(h) }, kinds)
}

// SubscribeFunc registers fn for every event, or only for kinds when given.
func (b *Bus) SubscribeFunc(fn HandlerFunc, kinds ...Kind) *Subscription {
	return b.add(fn, kinds)
}

// SubscribeContext registers h until ctx is done.
func (b *Bus) SubscribeContext(ctx context.Context, h Handler, kinds ...Kind) *Subscription {
	sub := b.Subscribe(h, kinds...)
	context.AfterFunc(ctx, sub.Cancel)
	return sub
}

// SubscribeWeak registers fn without keeping owner alive. Once owner has been
// garbage collected the subscription cancels itself.
func SubscribeWeak[T any](b *Bus, owner *T, fn func(*T, Event), kinds ...Kind) *Subscription {
	ref := weak.Make(owner)
	var sub *Subscription
	sub = b.add(func(ev Event) {
		target := ref.Value()
		if target == nil {
			sub.Cancel()
			return
		}
		fn(target, ev)
	}, kinds)
	runtime.AddCleanup(owner, func(s *Subscription) { s.Cancel() }, sub)
	return sub
}

func (b *Bus) add(deliver func(Event), kinds []Kind) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		bus:     b,
		deliver: deliver,
		kinds:   slices.Clone(kinds),
	}
	sub.active.Store(true)
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s *Subscription) bool { return s == sub })
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish enqueues ev and drains the queue unless another caller is already
// draining it.
func (b *Bus) Publish(ev Event) {
	b.Enqueue(ev)
	b.Flush()
}

// Enqueue appends events without delivering them.
func (b *Bus) Enqueue(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, evs...)
	b.enqueued += uint64(len(evs))
	b.mu.Unlock()
}

// Flush delivers queued events in order. It returns immediately when a drain
// is already running; that drain delivers them. Handlers flush with Flush or
// Publish.
func (b *Bus) Flush() {
	b.mu.Lock()
	if !b.draining {
		b.drainLocked()
	}
	b.mu.Unlock()
}

// Drain is Flush for callers outside a handler: when another goroutine is
// draining, it blocks until every event enqueued before the call has been
// delivered. Calling Drain from a handler deadlocks.
func (b *Bus) Drain() {
	b.mu.Lock()
	if b.draining {
		target := b.enqueued
		for b.delivered < target {
			b.idle.Wait()
		}
	} else {
		b.drainLocked()
	}
	b.mu.Unlock()
}

// drainLocked delivers the queue until it is empty. Callers hold b.mu; it is
// released around each delivery.
func (b *Bus) drainLocked() {
	b.draining = true
	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		for _, sub := range subs {
			if sub.active.Load() && sub.wants(ev.Kind()) {
				b.safeDeliver(sub, ev)
			}
		}

		b.mu.Lock()
		b.delivered++
		b.idle.Broadcast()
	}
	b.queue = nil
	b.draining = false
}

func (b *Bus) safeDeliver(sub *Subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(b.logger, "event handler panicked", "event_handler_panic",
				logging.String("event_kind", string(ev.Kind())),
				logging.String("subscription_id", sub.id),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "fix the listener; other subscribers still received the event"),
				logging.String(logging.FieldImpact, "this listener missed the event"),
			)
		}
	}()
	sub.deliver(ev)
}
