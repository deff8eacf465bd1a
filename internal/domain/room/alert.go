package room

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Urgency buckets a checkout alert by time remaining
type Urgency string

const (
	UrgencyUrgent  Urgency = "URGENT"
	UrgencyWarning Urgency = "WARNING"
	UrgencyNormal  Urgency = "NORMAL"
)

// CheckoutAlert flags an occupied room whose committed checkout is near.
// Alerts are derived on every scan and never stored.
type CheckoutAlert struct {
	RoomID               uuid.UUID
	RoomNumber           string
	StayID               uuid.UUID
	GuestName            string
	CheckOutDate         time.Time
	MinutesUntilCheckout int
	Urgency              Urgency
}

// ClassifyUrgency buckets the remaining time. ok is false outside [0, horizon].
func ClassifyUrgency(remaining time.Duration, policy Policy) (Urgency, bool) {
	if remaining < 0 || remaining > policy.AlertHorizon {
		return "", false
	}
	switch {
	case remaining <= policy.UrgentThreshold:
		return UrgencyUrgent, true
	case remaining <= policy.WarningThreshold:
		return UrgencyWarning, true
	default:
		return UrgencyNormal, true
	}
}

// ScanCheckoutAlerts re-derives the full alert set for the given rooms at now.
// It holds no state: identical inputs always produce identical alerts.
// Rooms that are not occupied are skipped.
func ScanCheckoutAlerts(rooms []Room, now time.Time, policy Policy) []CheckoutAlert {
	alerts := make([]CheckoutAlert, 0)
	for i := range rooms {
		r := &rooms[i]
		if !r.Status.IsOccupied() || r.Guest == nil {
			continue
		}
		remaining := r.Guest.CheckOutDate.Sub(now)
		urgency, ok := ClassifyUrgency(remaining, policy)
		if !ok {
			continue
		}
		alerts = append(alerts, CheckoutAlert{
			RoomID:               r.ID,
			RoomNumber:           r.Number,
			StayID:               r.Guest.ID,
			GuestName:            r.Guest.GuestName,
			CheckOutDate:         r.Guest.CheckOutDate,
			MinutesUntilCheckout: int(remaining / time.Minute),
			Urgency:              urgency,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if !alerts[i].CheckOutDate.Equal(alerts[j].CheckOutDate) {
			return alerts[i].CheckOutDate.Before(alerts[j].CheckOutDate)
		}
		return alerts[i].RoomNumber < alerts[j].RoomNumber
	})
	return alerts
}

// CountByUrgency tallies alerts per bucket
func CountByUrgency(alerts []CheckoutAlert) map[Urgency]int {
	counts := map[Urgency]int{UrgencyUrgent: 0, UrgencyWarning: 0, UrgencyNormal: 0}
	for _, a := range alerts {
		counts[a.Urgency]++
	}
	return counts
}
