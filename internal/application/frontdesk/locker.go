package frontdesk

import (
	"context"

	"github.com/google/uuid"
)

// RoomLocker serializes state-mutating operations on a single room.
// Lock blocks until the room is free or ctx is done; the returned function
// releases the lock and must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID uuid.UUID) (unlock func(), err error)
}
