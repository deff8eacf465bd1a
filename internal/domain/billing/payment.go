package billing

import (
	"strings"
	"time"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the guest settled
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// ParsePaymentMethod parses a case-insensitive method name
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewValidationError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+s)
	}
	return m, nil
}

// Payment is the immutable record of a settled stay. It snapshots everything
// needed to reprint the invoice after the stay and its charges are gone.
type Payment struct {
	ID          uuid.UUID
	RoomID      uuid.UUID
	RoomNumber  string
	StayID      uuid.UUID
	GuestName   string
	RentalType  room.RentalType
	BilledUnits int
	CheckInDate time.Time
	// CheckOutDate is the actual departure, not the committed one.
	CheckOutDate     time.Time
	RoomCharge       decimal.Decimal
	ServicesSubtotal decimal.Decimal
	VATRate          decimal.Decimal
	VATAmount        decimal.Decimal
	Total            decimal.Decimal
	Currency         valueobject.Currency
	Method           PaymentMethod
	ProcessedBy      string
	CheckedInBy      string
	CreatedAt        time.Time
}

// PaymentParams carries the settled amounts
type PaymentParams struct {
	RoomID           uuid.UUID
	RoomNumber       string
	Stay             room.Stay
	FinalCheckOut    time.Time
	Quote            Quote
	ServicesSubtotal decimal.Decimal
	VATRate          decimal.Decimal
	Currency         valueobject.Currency
	Method           PaymentMethod
	ProcessedBy      string
}

// NewPayment computes VAT and totals and builds the payment record.
// VAT is rate percent of (room + services), rounded half-up to the currency unit.
func NewPayment(p PaymentParams, now time.Time) (*Payment, error) {
	if !p.Method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(p.Method))
	}
	if p.VATRate.IsNegative() || p.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	if !fitsScale(p.VATRate, VATRateScale) {
		return nil, shared.NewValidationError("INVALID_VAT_RATE", "VAT rate allows at most 2 decimal places")
	}
	if p.Quote.Amount.IsNegative() || p.ServicesSubtotal.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Charges cannot be negative")
	}
	currency := p.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	// Each part is whole currency units, so the parts always add up to the total.
	roomCharge := valueobject.MustMoney(p.Quote.Amount, currency).RoundToUnit()
	services := valueobject.MustMoney(p.ServicesSubtotal, currency).RoundToUnit()
	subtotal, err := roomCharge.Add(services)
	if err != nil {
		return nil, err
	}
	vat := subtotal.Percentage(p.VATRate)
	total, err := subtotal.Add(vat)
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:               uuid.New(),
		RoomID:           p.RoomID,
		RoomNumber:       p.RoomNumber,
		StayID:           p.Stay.ID,
		GuestName:        p.Stay.GuestName,
		RentalType:       p.Stay.RentalType,
		BilledUnits:      p.Quote.Units,
		CheckInDate:      p.Stay.CheckInDate,
		CheckOutDate:     p.FinalCheckOut,
		RoomCharge:       roomCharge.Amount(),
		ServicesSubtotal: services.Amount(),
		VATRate:          p.VATRate,
		VATAmount:        vat.Amount(),
		Total:            total.Amount(),
		Currency:         currency,
		Method:           p.Method,
		ProcessedBy:      p.ProcessedBy,
		CheckedInBy:      p.Stay.CheckedInBy,
		CreatedAt:        now,
	}, nil
}

// Subtotal returns room charge plus services, before VAT
func (p *Payment) Subtotal() decimal.Decimal {
	return p.RoomCharge.Add(p.ServicesSubtotal)
}
