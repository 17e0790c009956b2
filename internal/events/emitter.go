package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

// EventHandler processes domain events published through an EventEmitter.
type EventHandler interface {
	HandleEvent(ctx context.Context, event domain.Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event domain.Event) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

// EventEmitter publishes domain events to all interested handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event domain.Event) error
}

// InMemoryEventEmitter dispatches events synchronously to handlers
// registered in memory.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an empty in-memory emitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// RegisterHandler adds a handler that will receive all subsequent events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler",
		slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent publishes the event to every registered handler. A failing
// handler does not stop delivery to the remaining handlers; the first error
// encountered is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event domain.Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Debug("no handlers registered for event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_kind", string(event.Kind)))
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_kind", string(event.Kind)))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// EmitAll publishes a batch of events in order, typically the events drained
// from a domain entity after a committed transaction. The first error is
// returned after all events have been offered to all handlers.
func (e *InMemoryEventEmitter) EmitAll(ctx context.Context, events []domain.Event) error {
	var firstErr error
	for _, event := range events {
		if err := e.EmitEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
