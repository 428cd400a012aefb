package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nutrilog/internal/events"
	"nutrilog/internal/logging"
)

const forwardQueueSize = 32

// Forwarder sends toast events to a Service in the background.
type Forwarder struct {
	svc     Service
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan events.ToastRequested
	sub    *events.Subscription
	done   chan struct{}
}

// NewForwarder subscribes to toast events on bus and starts the delivery
// goroutine. Call Close to unsubscribe and drain.
func NewForwarder(bus *events.Bus, svc Service, logger *slog.Logger) *Forwarder {
	f := &Forwarder{
		svc:     svc,
		logger:  logging.NewComponentLogger(logger, "notifications"),
		timeout: 15 * time.Second,
		queue:   make(chan events.ToastRequested, forwardQueueSize),
		done:    make(chan struct{}),
	}
	f.sub = bus.Subscribe(events.Funcs{ToastRequested: f.enqueue}, events.KindToastRequested)
	go f.run()
	return f
}

func (f *Forwarder) enqueue(ev events.ToastRequested) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- ev:
	default:
		logging.WarnWithContext(f.logger, "notification dropped", "notification_queue_full",
			logging.Int("queue_size", forwardQueueSize),
			logging.String(logging.FieldImpact, "toast not mirrored to ntfy"),
		)
	}
}

func (f *Forwarder) run() {
	defer close(f.done)
	for ev := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		err := f.svc.NotifyToast(ctx, ev.Message, ev.Severity)
		cancel()
		if err != nil {
			logging.WarnWithContext(f.logger, "notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ntfy_topic and network connectivity"),
				logging.String(logging.FieldImpact, "toast not mirrored to ntfy"),
			)
		}
	}
}

// Close unsubscribes and waits for queued notifications to be sent.
func (f *Forwarder) Close() {
	f.sub.Cancel()
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()
	<-f.done
}
