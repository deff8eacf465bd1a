package event

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/frontdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing to a stopped bus
var ErrBusStopped = errors.New("event bus is stopped")

// InMemoryEventBus dispatches events synchronously to registered handlers.
// A failing or panicking handler is logged and does not affect the others
// or the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	stopped  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers events in order to every handler registered for their type
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus. Publishing afterwards returns ErrBusStopped.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
			err = nil
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
