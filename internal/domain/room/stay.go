package room

import (
	"strings"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalType is the rate structure a stay is billed under. It is fixed at check-in.
type RentalType string

const (
	RentalHourly    RentalType = "HOURLY"
	RentalDaily     RentalType = "DAILY"
	RentalOvernight RentalType = "OVERNIGHT"
	RentalMonthly   RentalType = "MONTHLY"
)

// IsValid checks if the rental type is known
func (r RentalType) IsValid() bool {
	switch r {
	case RentalHourly, RentalDaily, RentalOvernight, RentalMonthly:
		return true
	}
	return false
}

// String returns the string representation of RentalType
func (r RentalType) String() string {
	return string(r)
}

// ParseRentalType parses a case-insensitive rental type name
func ParseRentalType(s string) (RentalType, error) {
	r := RentalType(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewValidationError("INVALID_RENTAL_TYPE", "Unknown rental type: "+s)
	}
	return r, nil
}

// Stay is an active occupancy embedded in a Room
type Stay struct {
	ID          uuid.UUID
	GuestName   string
	Phone       string
	IDNumber    string
	Nationality string
	Notes       string
	CheckInDate time.Time
	// CheckOutDate is the committed checkout. It may only move earlier.
	CheckOutDate time.Time
	RentalType   RentalType
	// Months is the contracted number of months for MONTHLY stays, zero otherwise.
	Months int
	// TotalAmount is the last computed room charge. It is a display hint and is
	// recomputed whenever CheckOutDate changes; billing never trusts it.
	TotalAmount decimal.Decimal
	CheckedInBy string
	CreatedAt   time.Time
}

// StayParams carries the check-in form
type StayParams struct {
	GuestName    string
	Phone        string
	IDNumber     string
	Nationality  string
	Notes        string
	CheckInDate  time.Time
	CheckOutDate time.Time
	RentalType   RentalType
	Months       int
	CheckedInBy  string
}

// NewStay validates the check-in form and creates a Stay.
// For MONTHLY stays the checkout is derived from the contracted months.
func NewStay(p StayParams, now time.Time) (*Stay, error) {
	if strings.TrimSpace(p.GuestName) == "" {
		return nil, shared.NewValidationError("INVALID_GUEST_NAME", "Guest name cannot be empty")
	}
	if !p.RentalType.IsValid() {
		return nil, shared.NewValidationError("INVALID_RENTAL_TYPE", "Unknown rental type: "+string(p.RentalType))
	}
	if p.CheckInDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_CHECK_IN", "Check-in date is required")
	}

	checkOut := p.CheckOutDate
	months := 0
	if p.RentalType == RentalMonthly {
		if p.Months < 1 {
			return nil, shared.NewValidationError("INVALID_MONTHS", "Monthly stays require at least one month")
		}
		months = p.Months
		checkOut = AddMonths(p.CheckInDate, months)
	}
	if !checkOut.After(p.CheckInDate) {
		return nil, shared.NewValidationError("INVALID_CHECK_OUT", "Check-out date must be after check-in date")
	}

	return &Stay{
		ID:           uuid.New(),
		GuestName:    strings.TrimSpace(p.GuestName),
		Phone:        strings.TrimSpace(p.Phone),
		IDNumber:     strings.TrimSpace(p.IDNumber),
		Nationality:  p.Nationality,
		Notes:        p.Notes,
		CheckInDate:  p.CheckInDate,
		CheckOutDate: checkOut,
		RentalType:   p.RentalType,
		Months:       months,
		TotalAmount:  decimal.Zero,
		CheckedInBy:  p.CheckedInBy,
		CreatedAt:    now,
	}, nil
}

// WithCheckOut returns a copy of the stay ending at checkOut, used for pricing
// an early departure without mutating the stay.
func (s Stay) WithCheckOut(checkOut time.Time) Stay {
	s.CheckOutDate = checkOut
	return s
}

// ValidateFinalCheckOut checks that a departure time neither extends the stay
// nor precedes check-in
func (s *Stay) ValidateFinalCheckOut(final time.Time) error {
	if final.After(s.CheckOutDate) {
		return shared.NewValidationError("CHECK_OUT_EXTENDED", "Check-out cannot be later than the committed check-out date")
	}
	if !final.After(s.CheckInDate) {
		return shared.NewValidationError("INVALID_CHECK_OUT", "Check-out date must be after check-in date")
	}
	return nil
}

// Duration returns the committed length of the stay
func (s *Stay) Duration() time.Duration {
	return s.CheckOutDate.Sub(s.CheckInDate)
}
