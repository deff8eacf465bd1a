package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event forwarded to a broker
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSerializer converts domain events to and from envelopes
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewEventSerializer creates a serializer with the room events registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{registry: make(map[string]reflect.Type)}
	s.Register(room.EventTypeRoomCheckedIn, &room.RoomCheckedInEvent{})
	s.Register(room.EventTypeStayShortened, &room.StayShortenedEvent{})
	s.Register(room.EventTypeRoomCheckedOut, &room.RoomCheckedOutEvent{})
	s.Register(room.EventTypeStayCancelled, &room.StayCancelledEvent{})
	s.Register(room.EventTypeRoomCleaned, &room.RoomCleanedEvent{})
	s.Register(room.EventTypeRoomMaintenanceToggled, &room.RoomMaintenanceToggledEvent{})
	return s
}

// Register registers the concrete type decoded for eventType
func (s *EventSerializer) Register(eventType string, instance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Encode wraps an event into a JSON envelope
func (s *EventSerializer) Encode(event shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
}

// Decode restores the registered event type from an envelope
func (s *EventSerializer) Decode(data []byte) (shared.DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	s.mu.RLock()
	t, ok := s.registry[env.EventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(env.Payload, ptr); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", env.EventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", env.EventType)
	}
	return event, nil
}
