package room

import (
	"context"

	"github.com/google/uuid"
)

// RoomRepository defines the interface for room persistence.
// Implementations must give read-your-writes within a single operation.
type RoomRepository interface {
	// FindByID loads a room with its active stay
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByNumber loads a room by its label within a building
	FindByNumber(ctx context.Context, buildingID *uuid.UUID, number string) (*Room, error)

	// FindAll lists every room, optionally restricted to a building
	FindAll(ctx context.Context, buildingID *uuid.UUID) ([]Room, error)

	// FindOccupied lists rooms with an attached stay
	FindOccupied(ctx context.Context) ([]Room, error)

	// Create inserts a new room
	Create(ctx context.Context, room *Room) error

	// Save persists the room and its stay with an optimistic version check.
	// On success the room's Version is incremented.
	Save(ctx context.Context, room *Room) error
}
