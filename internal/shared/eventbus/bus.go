package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"docdb-dashboard/internal/shared/logger"
)

// Event types published between modules
const (
	EventEnvironmentActivated = "environment.activated"
	EventEnvironmentUpdated   = "environment.updated"
	EventEnvironmentDeleted   = "environment.deleted"
)

// Event is a message delivered to every handler subscribed to its Type.
type Event struct {
	Type      string
	Payload   interface{}
	Source    string
	Timestamp time.Time
}

// NewEvent stamps a new event.
func NewEvent(eventType, source string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// Handler reacts to one event.
type Handler func(ctx context.Context, event Event) error

// Publisher is the side of the bus producers depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus is an in-process, synchronous event bus. Handlers run in
// subscription order on the publisher's goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
}

var _ Publisher = (*EventBus)(nil)

// NewEventBus creates a bus. Each event is delivered to each handler once.
func NewEventBus(log logger.Logger) *EventBus {
	if log == nil {
		log = logger.NewLoggerWithConfig("error", "text")
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.WithComponent("eventbus"),
	}
}

// Subscribe adds a handler for eventType
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("Subscribed handler for event type: %s", eventType)
}

// Publish runs every handler for the event. All handlers run even if one
// fails; their errors are joined.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.Type]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		eb.logger.Debugf("No handlers found for event type: %s", event.Type)
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := eb.execute(ctx, event, handler, i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (eb *EventBus) execute(ctx context.Context, event Event, handler Handler, idx int) error {
	if err := handler(ctx, event); err != nil {
		eb.logger.WithContext(ctx).Warnf("Handler %d failed for event %s: %v", idx, event.Type, err)
		return fmt.Errorf("handler %d for %s: %w", idx, event.Type, err)
	}
	return nil
}

// Unsubscribe removes all handlers for eventType
func (eb *EventBus) Unsubscribe(eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers, eventType)
}

// SubscriberCount returns the number of handlers for eventType
func (eb *EventBus) SubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}
