package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RoomStore is an in-memory room.RoomRepository
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]room.Room
	// FailSave makes the next Save calls fail with the given error.
	FailSave error
}

// NewRoomStore creates an empty RoomStore
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[uuid.UUID]room.Room)}
}

func cloneRoom(r *room.Room) room.Room {
	c := *r
	if r.Guest != nil {
		g := *r.Guest
		c.Guest = &g
	}
	if r.BuildingID != nil {
		b := *r.BuildingID
		c.BuildingID = &b
	}
	c.ClearDomainEvents()
	return c
}

// FindByID returns a copy of the room
func (s *RoomStore) FindByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, shared.NewNotFoundError("ROOM_NOT_FOUND", "Room not found")
	}
	c := cloneRoom(&r)
	return &c, nil
}

// FindByNumber returns the room with the given number in the building
func (s *RoomStore) FindByNumber(_ context.Context, buildingID *uuid.UUID, number string) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rooms {
		if r.Number == number && sameBuilding(r.BuildingID, buildingID) {
			c := cloneRoom(&r)
			return &c, nil
		}
	}
	return nil, shared.NewNotFoundError("ROOM_NOT_FOUND", "Room "+number+" not found")
}

// FindAll lists rooms ordered by number
func (s *RoomStore) FindAll(_ context.Context, buildingID *uuid.UUID) ([]room.Room, error) {
	return s.list(func(r *room.Room) bool {
		return buildingID == nil || sameBuilding(r.BuildingID, buildingID)
	}), nil
}

// FindOccupied lists rooms with an attached stay
func (s *RoomStore) FindOccupied(_ context.Context) ([]room.Room, error) {
	return s.list(func(r *room.Room) bool { return r.Guest != nil }), nil
}

// Create inserts a new room
func (s *RoomStore) Create(_ context.Context, r *room.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[r.ID]; exists {
		return shared.NewConflictError("ROOM_EXISTS", "Room already exists")
	}
	s.rooms[r.ID] = cloneRoom(r)
	return nil
}

// Save stores the room if its version matches the stored one
func (s *RoomStore) Save(_ context.Context, r *room.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return shared.NewPersistenceError("save room", s.FailSave)
	}
	current, ok := s.rooms[r.ID]
	if !ok {
		return shared.NewNotFoundError("ROOM_NOT_FOUND", "Room not found")
	}
	if current.Version != r.Version {
		return shared.ErrConcurrencyConflict
	}

	r.Version++
	stored := cloneRoom(r)
	stored.ClearDomainEvents()
	s.rooms[r.ID] = stored
	return nil
}

func (s *RoomStore) list(keep func(*room.Room) bool) []room.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]room.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if keep(&r) {
			out = append(out, cloneRoom(&r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func sameBuilding(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var _ room.RoomRepository = (*RoomStore)(nil)
