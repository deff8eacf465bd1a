package billing

import (
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Decimal places accepted for stored quantities, unit prices and VAT rates.
// A quantity times a unit price then fits the four places of a charge total.
const (
	QuantityScale int32 = 2
	PriceScale    int32 = 2
	VATRateScale  int32 = 2
)

// fitsScale reports whether d has at most places decimal digits
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// ServiceCharge is an ancillary line item (minibar, laundry) attached to a stay.
// Name, unit and price are snapshots taken from the catalog when the charge
// was added; later catalog edits never change them.
type ServiceCharge struct {
	ID          uuid.UUID
	StayID      uuid.UUID
	ServiceID   uuid.UUID
	ServiceName string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	AddedBy     string
	CreatedAt   time.Time
}

// NewServiceCharge prices quantity units of a catalog entry for a stay
func NewServiceCharge(stayID uuid.UUID, entry CatalogEntry, quantity decimal.Decimal, addedBy string, now time.Time) (*ServiceCharge, error) {
	if stayID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STAY", "Stay ID is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !fitsScale(quantity, QuantityScale) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity allows at most 2 decimal places")
	}
	if entry.Price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Service price cannot be negative")
	}
	if !fitsScale(entry.Price, PriceScale) {
		return nil, shared.NewValidationError("INVALID_PRICE", "Service price allows at most 2 decimal places")
	}

	return &ServiceCharge{
		ID:          uuid.New(),
		StayID:      stayID,
		ServiceID:   entry.ID,
		ServiceName: entry.Name,
		Unit:        entry.Unit,
		Quantity:    quantity,
		UnitPrice:   entry.Price,
		TotalPrice:  quantity.Mul(entry.Price),
		AddedBy:     addedBy,
		CreatedAt:   now,
	}, nil
}

// SumCharges totals the given charges. An empty list sums to zero.
func SumCharges(charges []ServiceCharge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.TotalPrice)
	}
	return total
}
