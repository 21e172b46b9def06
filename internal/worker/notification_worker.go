package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/eshop-service/internal/events"
)

const defaultQueueSize = 256

// Handler processes one event off the queue.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
// Subscribed events are queued and handled by a single goroutine; when the
// queue is full the event is dropped and logged.
type NotificationWorker struct {
	handler Handler
	logger  *zap.Logger
	queue   chan events.Event

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// NewNotificationWorker creates a worker with the given queue size.
func NewNotificationWorker(handler Handler, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
		done:    make(chan struct{}),
	}
}

// Subscribe queues every eventType published on dispatcher.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, eventTypes ...events.EventType) {
	for _, et := range eventTypes {
		dispatcher.Subscribe(et, w.enqueue)
	}
}

// Start runs the delivery loop until Stop is called. ctx is handed to the
// handler for each event.
func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for event := range w.queue {
			if err := w.handler.Handle(ctx, event); err != nil {
				w.logger.Warn("notification failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to be handled.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}
