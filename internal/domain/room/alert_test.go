package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomCheckingOutAt(t *testing.T, number string, checkOut time.Time) Room {
	t.Helper()
	r := newTestRoom(t)
	r.Number = number
	stay, err := NewStay(StayParams{
		GuestName:    "Guest " + number,
		CheckInDate:  checkOut.Add(-24 * time.Hour),
		CheckOutDate: checkOut,
		RentalType:   RentalDaily,
	}, t0)
	require.NoError(t, err)
	require.NoError(t, r.CheckIn(stay, pricer, DefaultPolicy(), t0))
	return *r
}

func TestClassifyUrgency(t *testing.T) {
	policy := DefaultPolicy()
	tests := []struct {
		remaining time.Duration
		urgency   Urgency
		ok        bool
	}{
		{-time.Minute, "", false},
		{0, UrgencyUrgent, true},
		{30 * time.Minute, UrgencyUrgent, true},
		{31 * time.Minute, UrgencyWarning, true},
		{60 * time.Minute, UrgencyWarning, true},
		{61 * time.Minute, UrgencyNormal, true},
		{120 * time.Minute, UrgencyNormal, true},
		{121 * time.Minute, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.remaining.String(), func(t *testing.T) {
			u, ok := ClassifyUrgency(tt.remaining, policy)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.urgency, u)
		})
	}
}

func TestScanCheckoutAlerts(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()

	vacant := *newTestRoom(t)
	vacant.Number = "100"
	rooms := []Room{
		roomCheckingOutAt(t, "305", now.Add(90*time.Minute)),
		roomCheckingOutAt(t, "201", now.Add(15*time.Minute)),
		roomCheckingOutAt(t, "102", now.Add(45*time.Minute)),
		roomCheckingOutAt(t, "103", now.Add(45*time.Minute)),
		roomCheckingOutAt(t, "404", now.Add(5*time.Hour)),
		roomCheckingOutAt(t, "405", now.Add(-10*time.Minute)),
		vacant,
	}

	alerts := ScanCheckoutAlerts(rooms, now, policy)
	require.Len(t, alerts, 4)

	numbers := make([]string, 0, len(alerts))
	for _, a := range alerts {
		numbers = append(numbers, a.RoomNumber)
	}
	assert.Equal(t, []string{"201", "102", "103", "305"}, numbers)
	assert.Equal(t, UrgencyUrgent, alerts[0].Urgency)
	assert.Equal(t, 15, alerts[0].MinutesUntilCheckout)
	assert.Equal(t, UrgencyWarning, alerts[1].Urgency)
	assert.Equal(t, UrgencyNormal, alerts[3].Urgency)
	assert.Equal(t, "Guest 201", alerts[0].GuestName)

	t.Run("scanning twice gives identical alerts", func(t *testing.T) {
		assert.Equal(t, alerts, ScanCheckoutAlerts(rooms, now, policy))
	})

	t.Run("counts by urgency", func(t *testing.T) {
		counts := CountByUrgency(alerts)
		assert.Equal(t, 1, counts[UrgencyUrgent])
		assert.Equal(t, 2, counts[UrgencyWarning])
		assert.Equal(t, 1, counts[UrgencyNormal])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ScanCheckoutAlerts(nil, now, policy))
	})
}
