// Package messaging provides an in-process event dispatcher. Command
// handlers publish domain events after a mutation commits; subscribers
// such as cache invalidation react to them.
package messaging

import (
	"errors"
	"sync"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-PROCESS DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// ErrDispatcherClosed is returned when publishing on a closed dispatcher.
var ErrDispatcherClosed = errors.New("messaging: dispatcher is closed")

// Handler consumes one domain event. Handler failures are logged, not
// propagated: a broken subscriber must not fail the write that emitted
// the event.
type Handler func(event shared.Event) error

// Dispatcher is a synchronous in-process implementation of
// shared.EventPublisher. Handlers run on the publisher's goroutine in
// subscription order.
type Dispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]Handler
	allHandlers []Handler
	closed      bool
	log         *logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for one event name.
func (d *Dispatcher) Subscribe(eventName string, handler Handler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	d.handlers[eventName] = append(d.handlers[eventName], handler)
	return nil
}

// SubscribeAll registers a handler for every event.
func (d *Dispatcher) SubscribeAll(handler Handler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	d.allHandlers = append(d.allHandlers, handler)
	return nil
}

// Publish delivers the event to all matching handlers.
func (d *Dispatcher) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event cannot be nil")
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrDispatcherClosed
	}
	handlers := make([]Handler, 0, len(d.handlers[event.EventName()])+len(d.allHandlers))
	handlers = append(handlers, d.handlers[event.EventName()]...)
	handlers = append(handlers, d.allHandlers...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			d.log.Error("event handler failed",
				logger.String("event", event.EventName()),
				logger.Err(err),
			)
		}
	}

	return nil
}

// Close stops accepting publishes and subscriptions.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
