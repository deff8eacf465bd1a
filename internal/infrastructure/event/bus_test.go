package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), time.Now()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// ==== Publish ====

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("RoomCheckedIn")
	bus.Subscribe(handler)

	event := newTestEvent("RoomCheckedIn")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Equal(t, 1, handler.count())
	assert.Equal(t, event, handler.handled[0])
}

func TestInMemoryEventBus_Publish_MultipleEventsInOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)

	first := newTestEvent("RoomCheckedOut")
	second := newTestEvent("RoomCleaned")
	require.NoError(t, bus.Publish(context.Background(), first, second))

	require.Equal(t, 2, handler.count())
	assert.Equal(t, first, handler.handled[0])
	assert.Equal(t, second, handler.handled[1])
}

func TestInMemoryEventBus_Publish_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("RoomCleaned")
	bus.Subscribe(handler, "StayCancelled")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("RoomCleaned")))
	assert.Equal(t, 0, handler.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("StayCancelled")))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_Publish_FailingHandlersAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("RoomCheckedIn")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("RoomCheckedIn")
	panicking.panics = true
	healthy := newTestHandler("RoomCheckedIn")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("RoomCheckedIn")))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("RoomCleaned")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("RoomCleaned"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("RoomCleaned"))

	assert.Equal(t, 1, handler.count())
}

// ==== Lifecycle ====

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("RoomCleaned")))

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("RoomCleaned")), ErrBusStopped)
	assert.Equal(t, 1, handler.count())

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, newTestEvent("RoomCleaned")))
}
