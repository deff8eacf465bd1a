package room

import (
	"fmt"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared/valueobject"
)

// Policy holds the business thresholds used by check-in guards, pricing and
// checkout alerts. DefaultPolicy matches the front desk's historical values.
type Policy struct {
	// AllowDirtyCheckIn permits renting a VACANT_DIRTY room before housekeeping.
	AllowDirtyCheckIn bool
	// MinimumHourlyBlock is the billing floor and base-price block for hourly stays.
	MinimumHourlyBlock int
	// DailyCutoverHour is the hour at which a new billable day starts.
	DailyCutoverHour int
	// MonthlyDayFactor multiplies the daily price when a room has no monthly price.
	MonthlyDayFactor int
	// DueOutSameDay marks a stay due-out on the calendar day of its checkout.
	DueOutSameDay bool
	AlertHorizon  time.Duration
	// UrgentThreshold and WarningThreshold bucket alerts inside the horizon.
	UrgentThreshold  time.Duration
	WarningThreshold time.Duration
	Currency         valueobject.Currency
	// Location fixes the calendar used for noon and same-day rules.
	// Nil uses the location carried by the stay's timestamps.
	Location *time.Location
}

// DefaultPolicy returns the standard front-desk policy
func DefaultPolicy() Policy {
	return Policy{
		AllowDirtyCheckIn:  true,
		MinimumHourlyBlock: 2,
		DailyCutoverHour:   12,
		MonthlyDayFactor:   30,
		DueOutSameDay:      true,
		AlertHorizon:       120 * time.Minute,
		UrgentThreshold:    30 * time.Minute,
		WarningThreshold:   60 * time.Minute,
		Currency:           valueobject.DefaultCurrency,
	}
}

// Validate checks the policy for inconsistent thresholds
func (p Policy) Validate() error {
	if p.MinimumHourlyBlock < 1 {
		return fmt.Errorf("minimum hourly block must be at least 1 hour, got %d", p.MinimumHourlyBlock)
	}
	if p.DailyCutoverHour < 0 || p.DailyCutoverHour > 23 {
		return fmt.Errorf("daily cutover hour must be between 0 and 23, got %d", p.DailyCutoverHour)
	}
	if p.MonthlyDayFactor < 1 {
		return fmt.Errorf("monthly day factor must be positive, got %d", p.MonthlyDayFactor)
	}
	if p.AlertHorizon <= 0 {
		return fmt.Errorf("alert horizon must be positive")
	}
	if p.UrgentThreshold > p.WarningThreshold || p.WarningThreshold > p.AlertHorizon {
		return fmt.Errorf("alert thresholds must satisfy urgent <= warning <= horizon")
	}
	if p.Currency == "" {
		return fmt.Errorf("currency cannot be empty")
	}
	return nil
}

// In converts t into the policy calendar
func (p Policy) In(t time.Time) time.Time {
	if p.Location == nil {
		return t
	}
	return t.In(p.Location)
}
