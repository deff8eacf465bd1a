package room

import (
	"strings"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rates holds a room's price list. Only DailyPrice is mandatory.
type Rates struct {
	DailyPrice decimal.Decimal
	// HourlyBasePrice covers the minimum hourly block.
	HourlyBasePrice *decimal.Decimal
	// HourlyRate is charged per hour beyond the minimum block.
	HourlyRate     *decimal.Decimal
	OvernightPrice *decimal.Decimal
	MonthlyPrice   *decimal.Decimal
}

// Validate checks that all configured prices are usable
func (r Rates) Validate() error {
	if !r.DailyPrice.IsPositive() {
		return shared.NewValidationError("INVALID_DAILY_PRICE", "Daily price must be positive")
	}
	for _, p := range []*decimal.Decimal{r.HourlyBasePrice, r.HourlyRate, r.OvernightPrice, r.MonthlyPrice} {
		if p != nil && p.IsNegative() {
			return shared.NewValidationError("INVALID_PRICE", "Prices cannot be negative")
		}
	}
	return nil
}

// Supports reports whether the room can be rented under the given rate structure
func (r Rates) Supports(rt RentalType) bool {
	if rt == RentalHourly {
		return r.HourlyBasePrice != nil
	}
	return rt.IsValid()
}

// Pricer computes the room-only charge of a stay ending at checkOut.
// It must be a pure function of its arguments.
type Pricer interface {
	Price(stay Stay, rates Rates, checkOut time.Time) (decimal.Decimal, error)
}

// Room is the aggregate root for a rentable unit and its active stay
type Room struct {
	shared.BaseAggregateRoot
	Number     string
	Floor      int
	BuildingID *uuid.UUID
	Rates      Rates
	Status     RoomStatus
	// ReturnStatus is the vacant status restored when maintenance ends.
	ReturnStatus RoomStatus
	Guest        *Stay
}

// NewRoom creates a new vacant, clean room
func NewRoom(number string, floor int, buildingID *uuid.UUID, rates Rates, now time.Time) (*Room, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("INVALID_ROOM_NUMBER", "Room number cannot be empty")
	}
	if len(number) > 20 {
		return nil, shared.NewValidationError("INVALID_ROOM_NUMBER", "Room number cannot exceed 20 characters")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	return &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Number:            number,
		Floor:             floor,
		BuildingID:        buildingID,
		Rates:             rates,
		Status:            StatusVacantClean,
	}, nil
}

// CheckIn attaches a stay and marks the room occupied.
// Legal from VACANT_CLEAN, and from VACANT_DIRTY when the policy allows it.
func (r *Room) CheckIn(stay *Stay, pricer Pricer, policy Policy, now time.Time) error {
	if !r.Status.CanTransitionTo(StatusOccupied) || r.Status.IsOccupied() {
		return shared.NewTransitionError("check in", r.Status.String())
	}
	if r.Status == StatusVacantDirty && !policy.AllowDirtyCheckIn {
		return shared.NewTransitionError("check in to a dirty room", r.Status.String())
	}
	if stay == nil {
		return shared.NewValidationError("INVALID_STAY", "Stay is required")
	}
	if !r.Rates.Supports(stay.RentalType) {
		return shared.NewValidationError("RENTAL_TYPE_UNAVAILABLE", "Room has no "+strings.ToLower(stay.RentalType.String())+" pricing")
	}

	total, err := pricer.Price(*stay, r.Rates, stay.CheckOutDate)
	if err != nil {
		return err
	}
	stay.TotalAmount = total

	r.Guest = stay
	r.Status = StatusOccupied
	r.UpdatedAt = now

	r.AddDomainEvent(NewRoomCheckedInEvent(r, now))

	return nil
}

// ShortenStay moves the committed checkout earlier and recomputes the stay's
// total. Stays can never be lengthened here.
func (r *Room) ShortenStay(newCheckOut time.Time, pricer Pricer, now time.Time) error {
	if !r.Status.IsOccupied() || r.Guest == nil {
		return shared.NewTransitionError("change check-out date", r.Status.String())
	}
	if err := r.Guest.ValidateFinalCheckOut(newCheckOut); err != nil {
		return err
	}

	previous := r.Guest.CheckOutDate
	total, err := pricer.Price(r.Guest.WithCheckOut(newCheckOut), r.Rates, newCheckOut)
	if err != nil {
		return err
	}
	r.Guest.CheckOutDate = newCheckOut
	r.Guest.TotalAmount = total
	r.UpdatedAt = now

	r.AddDomainEvent(NewStayShortenedEvent(r, previous, now))

	return nil
}

// Receipt identifies the persisted payment that settles a stay
type Receipt struct {
	PaymentID uuid.UUID
	Total     decimal.Decimal
	Method    string
}

// Checkout detaches the settled stay and leaves the room dirty.
// Callers must have persisted the Payment before calling Checkout.
func (r *Room) Checkout(receipt Receipt, now time.Time) (*Stay, error) {
	if !r.Status.IsOccupied() || r.Guest == nil {
		return nil, shared.NewTransitionError("check out", r.Status.String())
	}

	stay := r.Guest
	r.Guest = nil
	r.Status = StatusVacantDirty
	r.UpdatedAt = now

	r.AddDomainEvent(NewRoomCheckedOutEvent(r, stay, receipt, now))

	return stay, nil
}

// CancelStay removes a stay entered by mistake without charging it.
// The reason is optional and only travels on the event.
// The room goes to VACANT_DIRTY so housekeeping still inspects it.
func (r *Room) CancelStay(reason string, now time.Time) (*Stay, error) {
	if !r.Status.IsOccupied() || r.Guest == nil {
		return nil, shared.NewTransitionError("cancel stay", r.Status.String())
	}

	stay := r.Guest
	r.Guest = nil
	r.Status = StatusVacantDirty
	r.UpdatedAt = now

	r.AddDomainEvent(NewStayCancelledEvent(r, stay, reason, now))

	return stay, nil
}

// MarkClean completes housekeeping on a dirty room
func (r *Room) MarkClean(now time.Time) error {
	if r.Status != StatusVacantDirty {
		return shared.NewTransitionError("mark clean", r.Status.String())
	}

	r.Status = StatusVacantClean
	r.UpdatedAt = now

	r.AddDomainEvent(NewRoomCleanedEvent(r, now))

	return nil
}

// ToggleMaintenance takes a vacant room out of order, or returns an
// out-of-order room to the vacant status it had before.
func (r *Room) ToggleMaintenance(now time.Time) error {
	if r.Guest != nil || r.Status.IsOccupied() {
		return shared.NewTransitionError("toggle maintenance", r.Status.String())
	}

	if r.Status == StatusOutOfOrder {
		back := r.ReturnStatus
		if !back.IsVacant() {
			back = StatusVacantDirty
		}
		r.Status = back
		r.ReturnStatus = ""
	} else {
		r.ReturnStatus = r.Status
		r.Status = StatusOutOfOrder
	}
	r.UpdatedAt = now

	r.AddDomainEvent(NewRoomMaintenanceToggledEvent(r, now))

	return nil
}

// UpdateRates replaces the price list. Active stays keep their check-in price
// structure but are billed at the current rates.
func (r *Room) UpdateRates(rates Rates, now time.Time) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	r.Rates = rates
	r.UpdatedAt = now
	return nil
}

// IsOccupied returns true if a guest is in the room
func (r *Room) IsOccupied() bool {
	return r.Status.IsOccupied()
}

// IsDueOut reports whether the occupied room should be shown as due-out at now
func (r *Room) IsDueOut(now time.Time, policy Policy) bool {
	if !r.Status.IsOccupied() || r.Guest == nil {
		return false
	}
	checkOut := policy.In(r.Guest.CheckOutDate)
	if !now.Before(checkOut) {
		return true
	}
	return policy.DueOutSameDay && SameDay(checkOut, now)
}

// DisplayStatus derives the status shown on the board. Persisted OCCUPIED
// rooms are displayed as DUE_OUT inside the due-out window.
func (r *Room) DisplayStatus(now time.Time, policy Policy) RoomStatus {
	if r.IsDueOut(now, policy) {
		return StatusDueOut
	}
	if r.Status == StatusDueOut {
		return StatusOccupied
	}
	return r.Status
}

// Validate checks the guest/status invariant
func (r *Room) Validate() error {
	if !r.Status.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Unknown room status: "+r.Status.String())
	}
	if r.Status.IsOccupied() != (r.Guest != nil) {
		return shared.NewConflictError("GUEST_STATUS_MISMATCH", "Room guest does not match status "+r.Status.String())
	}
	return nil
}
