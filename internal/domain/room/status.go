package room

// RoomStatus represents the housekeeping/occupancy status of a room
type RoomStatus string

const (
	StatusVacantClean RoomStatus = "VACANT_CLEAN"
	StatusVacantDirty RoomStatus = "VACANT_DIRTY"
	StatusOccupied    RoomStatus = "OCCUPIED"
	StatusDueOut      RoomStatus = "DUE_OUT"
	StatusOutOfOrder  RoomStatus = "OUT_OF_ORDER"
)

// IsValid checks if the status is a valid RoomStatus
func (s RoomStatus) IsValid() bool {
	switch s {
	case StatusVacantClean, StatusVacantDirty, StatusOccupied, StatusDueOut, StatusOutOfOrder:
		return true
	}
	return false
}

// String returns the string representation of RoomStatus
func (s RoomStatus) String() string {
	return string(s)
}

// IsOccupied reports whether a guest is in the room. DUE_OUT is an occupied room.
func (s RoomStatus) IsOccupied() bool {
	return s == StatusOccupied || s == StatusDueOut
}

// IsVacant reports whether the room is empty and in service
func (s RoomStatus) IsVacant() bool {
	return s == StatusVacantClean || s == StatusVacantDirty
}

// CanTransitionTo checks if the status can transition to the target status.
// Guards treat DUE_OUT exactly like OCCUPIED. Renting a dirty room is further
// gated by Policy.AllowDirtyCheckIn.
func (s RoomStatus) CanTransitionTo(target RoomStatus) bool {
	switch s {
	case StatusVacantClean:
		return target == StatusOccupied || target == StatusOutOfOrder
	case StatusVacantDirty:
		return target == StatusOccupied || target == StatusVacantClean || target == StatusOutOfOrder
	case StatusOccupied:
		return target == StatusVacantDirty || target == StatusDueOut
	case StatusDueOut:
		return target == StatusVacantDirty || target == StatusOccupied
	case StatusOutOfOrder:
		return target == StatusVacantClean || target == StatusVacantDirty
	}
	return false
}

// DisplayPriority orders statuses for front-desk boards; lower sorts first
func (s RoomStatus) DisplayPriority() int {
	switch s {
	case StatusDueOut:
		return 0
	case StatusOccupied:
		return 1
	case StatusVacantDirty:
		return 2
	case StatusVacantClean:
		return 3
	case StatusOutOfOrder:
		return 4
	}
	return 5
}
