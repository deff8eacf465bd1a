package billing

import (
	"time"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Quote is a priced stay with the units that were billed
type Quote struct {
	RentalType room.RentalType
	// Units is hours, days or months depending on RentalType; 1 for overnight.
	Units  int
	Amount decimal.Decimal
}

// PricingEngine computes room charges. It reads no clock: the checkout instant
// is always supplied, so the same inputs always give the same amount.
type PricingEngine struct {
	policy room.Policy
}

// NewPricingEngine creates a new PricingEngine
func NewPricingEngine(policy room.Policy) *PricingEngine {
	return &PricingEngine{policy: policy}
}

// Price returns the room-only charge of stay ending at checkOut
func (e *PricingEngine) Price(stay room.Stay, rates room.Rates, checkOut time.Time) (decimal.Decimal, error) {
	q, err := e.Quote(stay, rates, checkOut)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Amount, nil
}

// Quote prices the stay and reports the billed units
func (e *PricingEngine) Quote(stay room.Stay, rates room.Rates, checkOut time.Time) (Quote, error) {
	if !checkOut.After(stay.CheckInDate) {
		return Quote{}, shared.NewValidationError("INVALID_CHECK_OUT", "Check-out date must be after check-in date")
	}

	var (
		units  int
		amount decimal.Decimal
	)

	switch stay.RentalType {
	case room.RentalHourly:
		if rates.HourlyBasePrice == nil {
			return Quote{}, shared.NewValidationError("RENTAL_TYPE_UNAVAILABLE", "Room has no hourly pricing")
		}
		units = e.BilledHours(stay.CheckInDate, checkOut)
		amount = *rates.HourlyBasePrice
		if extra := units - e.policy.MinimumHourlyBlock; extra > 0 {
			rate := decimal.Zero
			if rates.HourlyRate != nil {
				rate = *rates.HourlyRate
			}
			amount = amount.Add(rate.Mul(decimal.NewFromInt(int64(extra))))
		}

	case room.RentalOvernight:
		units = 1
		amount = rates.DailyPrice
		if rates.OvernightPrice != nil {
			amount = *rates.OvernightPrice
		}

	case room.RentalMonthly:
		if stay.Months < 1 {
			return Quote{}, shared.NewValidationError("INVALID_MONTHS", "Monthly stays require at least one month")
		}
		units = stay.Months
		monthly := rates.DailyPrice.Mul(decimal.NewFromInt(int64(e.policy.MonthlyDayFactor)))
		if rates.MonthlyPrice != nil {
			monthly = *rates.MonthlyPrice
		}
		amount = monthly.Mul(decimal.NewFromInt(int64(units)))

	case room.RentalDaily:
		units = e.DailyUnits(stay.CheckInDate, checkOut)
		amount = rates.DailyPrice.Mul(decimal.NewFromInt(int64(units)))

	default:
		return Quote{}, shared.NewValidationError("INVALID_RENTAL_TYPE", "Unknown rental type: "+string(stay.RentalType))
	}

	return Quote{
		RentalType: stay.RentalType,
		Units:      units,
		Amount:     amount.Round(e.policy.Currency.Scale()),
	}, nil
}

// BilledHours rounds the stay up to whole hours, floored at the minimum block
func (e *PricingEngine) BilledHours(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	if hours < e.policy.MinimumHourlyBlock {
		hours = e.policy.MinimumHourlyBlock
	}
	return hours
}

// DailyUnits counts billable days under the cutover rule: one day, plus one
// for every cutover instant (noon by default) strictly between check-in and
// checkout. Check-in 23:00, checkout 13:00 next day crosses one noon: 2 days.
func (e *PricingEngine) DailyUnits(checkIn, checkOut time.Time) int {
	ci := e.policy.In(checkIn)
	co := checkOut.In(ci.Location())

	cutover := time.Date(ci.Year(), ci.Month(), ci.Day(), e.policy.DailyCutoverHour, 0, 0, 0, ci.Location())
	if !cutover.After(ci) {
		cutover = cutover.AddDate(0, 0, 1)
	}

	days := 1
	for ; cutover.Before(co); cutover = cutover.AddDate(0, 0, 1) {
		days++
	}
	return days
}

var _ room.Pricer = (*PricingEngine)(nil)
