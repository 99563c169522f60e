// Package events provides the in-process pub/sub bus the simulation uses to
// hand tick results to outer layers (network snapshots, telemetry).
//
// Delivery is synchronous: Publish calls handlers in the caller's goroutine,
// inside the tick boundary, and handler errors are joined and returned.
// Handlers must stay quick or offload heavy work.
package events

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one published occurrence, fanned out by Type.
type Event struct {
	Type      string
	Tick      uint64
	Timestamp time.Time
	Data      any
}

// Handler consumes one event. A non-nil error is joined into Publish's result
// but never stops delivery to the remaining handlers.
type Handler func(Event) error

// Subscription is a cancellable handle for a registered handler.
type Subscription struct {
	id        string
	eventType string
	cancel    func()
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() string { return s.id }

// EventType returns the event type the subscription listens for.
func (s *Subscription) EventType() string { return s.eventType }

// Cancel unregisters the handler. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Bus is a thread-safe type-keyed event bus. One bus belongs to one game
// instance; it is passed by reference, never shared process-wide.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler // eventType -> subID -> handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[string]Handler)}
}

// Subscribe registers a handler for eventType and returns its subscription.
func (b *Bus) Subscribe(eventType string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	id := uuid.NewString()
	b.handlers[eventType][id] = handler
	sub := &Subscription{id: id, eventType: eventType}
	sub.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.handlers[eventType]; ok {
			delete(m, id)
		}
	}
	return sub
}

// Publish delivers the event synchronously to every active handler of its
// type. Handler errors are joined; a nil return means every handler succeeded.
func (b *Bus) Publish(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	b.mu.RLock()
	m := b.handlers[ev.Type]
	handlers := make([]Handler, 0, len(m))
	for _, h := range m {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
