package room

import (
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeRoom = "Room"

// Event type constants
const (
	EventTypeRoomCheckedIn          = "RoomCheckedIn"
	EventTypeStayShortened          = "StayShortened"
	EventTypeRoomCheckedOut         = "RoomCheckedOut"
	EventTypeStayCancelled          = "StayCancelled"
	EventTypeRoomCleaned            = "RoomCleaned"
	EventTypeRoomMaintenanceToggled = "RoomMaintenanceToggled"
)

// RoomCheckedInEvent is raised when a guest is checked into a room
type RoomCheckedInEvent struct {
	shared.BaseDomainEvent
	RoomNumber   string          `json:"room_number"`
	StayID       uuid.UUID       `json:"stay_id"`
	GuestName    string          `json:"guest_name"`
	RentalType   RentalType      `json:"rental_type"`
	CheckInDate  time.Time       `json:"check_in_date"`
	CheckOutDate time.Time       `json:"check_out_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CheckedInBy  string          `json:"checked_in_by"`
}

// NewRoomCheckedInEvent creates a new RoomCheckedInEvent
func NewRoomCheckedInEvent(r *Room, at time.Time) *RoomCheckedInEvent {
	return &RoomCheckedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomCheckedIn, AggregateTypeRoom, r.ID, at),
		RoomNumber:      r.Number,
		StayID:          r.Guest.ID,
		GuestName:       r.Guest.GuestName,
		RentalType:      r.Guest.RentalType,
		CheckInDate:     r.Guest.CheckInDate,
		CheckOutDate:    r.Guest.CheckOutDate,
		TotalAmount:     r.Guest.TotalAmount,
		CheckedInBy:     r.Guest.CheckedInBy,
	}
}

// StayShortenedEvent is raised when a stay's committed checkout moves earlier
type StayShortenedEvent struct {
	shared.BaseDomainEvent
	RoomNumber       string          `json:"room_number"`
	StayID           uuid.UUID       `json:"stay_id"`
	PreviousCheckOut time.Time       `json:"previous_check_out"`
	CheckOutDate     time.Time       `json:"check_out_date"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// NewStayShortenedEvent creates a new StayShortenedEvent
func NewStayShortenedEvent(r *Room, previous time.Time, at time.Time) *StayShortenedEvent {
	return &StayShortenedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStayShortened, AggregateTypeRoom, r.ID, at),
		RoomNumber:       r.Number,
		StayID:           r.Guest.ID,
		PreviousCheckOut: previous,
		CheckOutDate:     r.Guest.CheckOutDate,
		TotalAmount:      r.Guest.TotalAmount,
	}
}

// RoomCheckedOutEvent is raised after a settled checkout
type RoomCheckedOutEvent struct {
	shared.BaseDomainEvent
	RoomNumber  string     `json:"room_number"`
	StayID      uuid.UUID  `json:"stay_id"`
	GuestName   string     `json:"guest_name"`
	RentalType  RentalType `json:"rental_type"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Total       decimal.Decimal `json:"total"`
	Method      string          `json:"method"`
	CheckedInBy string          `json:"checked_in_by"`
}

// NewRoomCheckedOutEvent creates a new RoomCheckedOutEvent
func NewRoomCheckedOutEvent(r *Room, stay *Stay, receipt Receipt, at time.Time) *RoomCheckedOutEvent {
	return &RoomCheckedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomCheckedOut, AggregateTypeRoom, r.ID, at),
		RoomNumber:      r.Number,
		StayID:          stay.ID,
		GuestName:       stay.GuestName,
		RentalType:      stay.RentalType,
		PaymentID:       receipt.PaymentID,
		Total:           receipt.Total,
		Method:          receipt.Method,
		CheckedInBy:     stay.CheckedInBy,
	}
}

// StayCancelledEvent is raised when a stay is removed without payment
type StayCancelledEvent struct {
	shared.BaseDomainEvent
	RoomNumber string    `json:"room_number"`
	StayID     uuid.UUID `json:"stay_id"`
	GuestName  string    `json:"guest_name"`
	Reason     string    `json:"reason"`
}

// NewStayCancelledEvent creates a new StayCancelledEvent
func NewStayCancelledEvent(r *Room, stay *Stay, reason string, at time.Time) *StayCancelledEvent {
	return &StayCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStayCancelled, AggregateTypeRoom, r.ID, at),
		RoomNumber:      r.Number,
		StayID:          stay.ID,
		GuestName:       stay.GuestName,
		Reason:          reason,
	}
}

// RoomCleanedEvent is raised when housekeeping finishes a room
type RoomCleanedEvent struct {
	shared.BaseDomainEvent
	RoomNumber string `json:"room_number"`
}

// NewRoomCleanedEvent creates a new RoomCleanedEvent
func NewRoomCleanedEvent(r *Room, at time.Time) *RoomCleanedEvent {
	return &RoomCleanedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomCleaned, AggregateTypeRoom, r.ID, at),
		RoomNumber:      r.Number,
	}
}

// RoomMaintenanceToggledEvent is raised when a room enters or leaves OUT_OF_ORDER
type RoomMaintenanceToggledEvent struct {
	shared.BaseDomainEvent
	RoomNumber string     `json:"room_number"`
	OutOfOrder bool       `json:"out_of_order"`
	Status     RoomStatus `json:"status"`
}

// NewRoomMaintenanceToggledEvent creates a new RoomMaintenanceToggledEvent
func NewRoomMaintenanceToggledEvent(r *Room, at time.Time) *RoomMaintenanceToggledEvent {
	return &RoomMaintenanceToggledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomMaintenanceToggled, AggregateTypeRoom, r.ID, at),
		RoomNumber:      r.Number,
		OutOfOrder:      r.Status == StatusOutOfOrder,
		Status:          r.Status,
	}
}
