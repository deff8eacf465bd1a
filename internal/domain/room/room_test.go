package room

import (
	"errors"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatPricer charges a fixed amount per started day
type flatPricer struct {
	perDay decimal.Decimal
	err    error
}

func (p flatPricer) Price(stay Stay, _ Rates, checkOut time.Time) (decimal.Decimal, error) {
	if p.err != nil {
		return decimal.Zero, p.err
	}
	days := int64(checkOut.Sub(stay.CheckInDate) / (24 * time.Hour))
	if checkOut.Sub(stay.CheckInDate)%(24*time.Hour) != 0 {
		days++
	}
	return p.perDay.Mul(decimal.NewFromInt(days)), nil
}

var (
	t0     = time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	pricer = flatPricer{perDay: decimal.NewFromInt(500000)}
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	base := decimal.NewFromInt(150000)
	r, err := NewRoom("101", 1, nil, Rates{DailyPrice: decimal.NewFromInt(500000), HourlyBasePrice: &base}, t0)
	require.NoError(t, err)
	return r
}

func newTestStay(t *testing.T, rt RentalType, nights int) *Stay {
	t.Helper()
	s, err := NewStay(StayParams{
		GuestName:    "Tran Thi B",
		CheckInDate:  t0,
		CheckOutDate: t0.Add(time.Duration(nights) * 24 * time.Hour),
		RentalType:   rt,
		Months:       1,
		CheckedInBy:  "reception",
	}, t0)
	require.NoError(t, err)
	return s
}

func occupiedRoom(t *testing.T) *Room {
	t.Helper()
	r := newTestRoom(t)
	require.NoError(t, r.CheckIn(newTestStay(t, RentalDaily, 2), pricer, DefaultPolicy(), t0))
	r.ClearDomainEvents()
	return r
}

func assertTransitionError(t *testing.T, err error, current RoomStatus) {
	t.Helper()
	require.Error(t, err)
	var te *shared.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, current.String(), te.Current)
	assert.True(t, shared.IsConflict(err))
}

// ==================== NewRoom / NewStay ====================

func TestNewRoom(t *testing.T) {
	t.Run("starts vacant clean", func(t *testing.T) {
		r := newTestRoom(t)
		assert.Equal(t, StatusVacantClean, r.Status)
		assert.Nil(t, r.Guest)
		assert.Equal(t, 1, r.Version)
		assert.NoError(t, r.Validate())
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewRoom("  ", 1, nil, Rates{DailyPrice: decimal.NewFromInt(1)}, t0)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects non-positive daily price", func(t *testing.T) {
		_, err := NewRoom("101", 1, nil, Rates{}, t0)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestNewStay(t *testing.T) {
	t.Run("monthly checkout derived from months", func(t *testing.T) {
		s, err := NewStay(StayParams{
			GuestName:   "Le Van C",
			CheckInDate: time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
			RentalType:  RentalMonthly,
			Months:      1,
		}, t0)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), s.CheckOutDate)
	})

	tests := []struct {
		name   string
		params StayParams
		code   string
	}{
		{"empty guest", StayParams{CheckInDate: t0, CheckOutDate: t0.Add(time.Hour), RentalType: RentalDaily}, "INVALID_GUEST_NAME"},
		{"unknown rental type", StayParams{GuestName: "A", CheckInDate: t0, CheckOutDate: t0.Add(time.Hour), RentalType: "WEEKLY"}, "INVALID_RENTAL_TYPE"},
		{"checkout before check-in", StayParams{GuestName: "A", CheckInDate: t0, CheckOutDate: t0.Add(-time.Hour), RentalType: RentalDaily}, "INVALID_CHECK_OUT"},
		{"checkout equal to check-in", StayParams{GuestName: "A", CheckInDate: t0, CheckOutDate: t0, RentalType: RentalHourly}, "INVALID_CHECK_OUT"},
		{"monthly without months", StayParams{GuestName: "A", CheckInDate: t0, RentalType: RentalMonthly}, "INVALID_MONTHS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStay(tt.params, t0)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.NewValidationError(tt.code, ""))
		})
	}
}

// ==================== CheckIn ====================

func TestRoom_CheckIn(t *testing.T) {
	t.Run("attaches stay and prices it", func(t *testing.T) {
		r := newTestRoom(t)
		stay := newTestStay(t, RentalDaily, 2)

		require.NoError(t, r.CheckIn(stay, pricer, DefaultPolicy(), t0))
		assert.Equal(t, StatusOccupied, r.Status)
		assert.Same(t, stay, r.Guest)
		assert.True(t, r.Guest.TotalAmount.Equal(decimal.NewFromInt(1000000)))
		assert.NoError(t, r.Validate())

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRoomCheckedIn, events[0].EventType())
	})

	t.Run("dirty room allowed by default policy", func(t *testing.T) {
		r := newTestRoom(t)
		r.Status = StatusVacantDirty
		require.NoError(t, r.CheckIn(newTestStay(t, RentalDaily, 1), pricer, DefaultPolicy(), t0))
	})

	t.Run("dirty room rejected when policy forbids it", func(t *testing.T) {
		r := newTestRoom(t)
		r.Status = StatusVacantDirty
		policy := DefaultPolicy()
		policy.AllowDirtyCheckIn = false
		err := r.CheckIn(newTestStay(t, RentalDaily, 1), pricer, policy, t0)
		assertTransitionError(t, err, StatusVacantDirty)
		assert.Nil(t, r.Guest)
	})

	t.Run("occupied room rejected", func(t *testing.T) {
		r := occupiedRoom(t)
		previous := r.Guest
		err := r.CheckIn(newTestStay(t, RentalDaily, 1), pricer, DefaultPolicy(), t0)
		assertTransitionError(t, err, StatusOccupied)
		assert.Same(t, previous, r.Guest)
	})

	t.Run("out of order room rejected", func(t *testing.T) {
		r := newTestRoom(t)
		require.NoError(t, r.ToggleMaintenance(t0))
		err := r.CheckIn(newTestStay(t, RentalDaily, 1), pricer, DefaultPolicy(), t0)
		assertTransitionError(t, err, StatusOutOfOrder)
	})

	t.Run("rental type without pricing rejected", func(t *testing.T) {
		r := newTestRoom(t)
		r.Rates.HourlyBasePrice = nil
		err := r.CheckIn(newTestStay(t, RentalHourly, 1), pricer, DefaultPolicy(), t0)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, StatusVacantClean, r.Status)
	})

	t.Run("pricing failure leaves room vacant", func(t *testing.T) {
		r := newTestRoom(t)
		err := r.CheckIn(newTestStay(t, RentalDaily, 1), flatPricer{err: errors.New("boom")}, DefaultPolicy(), t0)
		require.Error(t, err)
		assert.Equal(t, StatusVacantClean, r.Status)
		assert.Nil(t, r.Guest)
	})
}

// ==================== ShortenStay ====================

func TestRoom_ShortenStay(t *testing.T) {
	t.Run("earlier checkout recomputes total", func(t *testing.T) {
		r := occupiedRoom(t)
		newCheckOut := t0.Add(20 * time.Hour)
		require.NoError(t, r.ShortenStay(newCheckOut, pricer, t0))
		assert.Equal(t, newCheckOut, r.Guest.CheckOutDate)
		assert.True(t, r.Guest.TotalAmount.Equal(decimal.NewFromInt(500000)))
		assert.Equal(t, EventTypeStayShortened, r.GetDomainEvents()[0].EventType())
	})

	t.Run("extension rejected", func(t *testing.T) {
		r := occupiedRoom(t)
		committed := r.Guest.CheckOutDate
		err := r.ShortenStay(committed.Add(time.Hour), pricer, t0)
		assert.ErrorIs(t, err, shared.NewValidationError("CHECK_OUT_EXTENDED", ""))
		assert.Equal(t, committed, r.Guest.CheckOutDate)
	})

	t.Run("checkout before check-in rejected", func(t *testing.T) {
		r := occupiedRoom(t)
		err := r.ShortenStay(t0.Add(-time.Minute), pricer, t0)
		assert.ErrorIs(t, err, shared.NewValidationError("INVALID_CHECK_OUT", ""))
	})

	t.Run("vacant room rejected", func(t *testing.T) {
		r := newTestRoom(t)
		assertTransitionError(t, r.ShortenStay(t0, pricer, t0), StatusVacantClean)
	})
}

// ==================== Checkout / Cancel ====================

func TestRoom_Checkout(t *testing.T) {
	t.Run("detaches stay and leaves room dirty", func(t *testing.T) {
		r := occupiedRoom(t)
		stayID := r.Guest.ID
		paymentID := uuid.New()
		stay, err := r.Checkout(Receipt{PaymentID: paymentID, Total: decimal.NewFromInt(300000), Method: "CASH"}, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, stayID, stay.ID)
		assert.Nil(t, r.Guest)
		assert.Equal(t, StatusVacantDirty, r.Status)
		assert.NoError(t, r.Validate())
		ev, ok := r.GetDomainEvents()[0].(*RoomCheckedOutEvent)
		require.True(t, ok)
		assert.Equal(t, paymentID, ev.PaymentID)
		assert.Equal(t, "CASH", ev.Method)
		assert.True(t, ev.Total.Equal(decimal.NewFromInt(300000)))
	})

	t.Run("due-out room can be checked out", func(t *testing.T) {
		r := occupiedRoom(t)
		r.Status = StatusDueOut
		_, err := r.Checkout(Receipt{PaymentID: uuid.New()}, t0)
		require.NoError(t, err)
	})

	t.Run("vacant room rejected", func(t *testing.T) {
		r := newTestRoom(t)
		_, err := r.Checkout(Receipt{PaymentID: uuid.New()}, t0)
		assertTransitionError(t, err, StatusVacantClean)
	})
}

func TestRoom_CancelStay(t *testing.T) {
	t.Run("removes stay without payment", func(t *testing.T) {
		r := occupiedRoom(t)
		stay, err := r.CancelStay("wrong room", t0)
		require.NoError(t, err)
		assert.NotNil(t, stay)
		assert.Equal(t, StatusVacantDirty, r.Status)
		assert.Nil(t, r.Guest)

		ev, ok := r.GetDomainEvents()[0].(*StayCancelledEvent)
		require.True(t, ok)
		assert.Equal(t, "wrong room", ev.Reason)
	})

	t.Run("reason optional", func(t *testing.T) {
		r := occupiedRoom(t)
		_, err := r.CancelStay("", t0)
		require.NoError(t, err)
		assert.Equal(t, StatusVacantDirty, r.Status)
	})

	t.Run("vacant room rejected", func(t *testing.T) {
		r := newTestRoom(t)
		_, err := r.CancelStay("x", t0)
		assertTransitionError(t, err, StatusVacantClean)
	})
}

// ==================== Housekeeping ====================

func TestRoom_MarkClean(t *testing.T) {
	r := occupiedRoom(t)
	assertTransitionError(t, r.MarkClean(t0), StatusOccupied)

	_, err := r.Checkout(Receipt{PaymentID: uuid.New()}, t0)
	require.NoError(t, err)
	require.NoError(t, r.MarkClean(t0))
	assert.Equal(t, StatusVacantClean, r.Status)

	assertTransitionError(t, r.MarkClean(t0), StatusVacantClean)
}

func TestRoom_ToggleMaintenance(t *testing.T) {
	tests := []struct {
		name  string
		start RoomStatus
	}{
		{"from clean", StatusVacantClean},
		{"from dirty", StatusVacantDirty},
	}
	for _, tt := range tests {
		t.Run(tt.name+" and back", func(t *testing.T) {
			r := newTestRoom(t)
			r.Status = tt.start

			require.NoError(t, r.ToggleMaintenance(t0))
			assert.Equal(t, StatusOutOfOrder, r.Status)

			require.NoError(t, r.ToggleMaintenance(t0))
			assert.Equal(t, tt.start, r.Status)
			assert.Len(t, r.GetDomainEvents(), 2)
		})
	}

	t.Run("unknown return status defaults to dirty", func(t *testing.T) {
		r := newTestRoom(t)
		r.Status = StatusOutOfOrder
		require.NoError(t, r.ToggleMaintenance(t0))
		assert.Equal(t, StatusVacantDirty, r.Status)
	})

	t.Run("occupied room rejected", func(t *testing.T) {
		r := occupiedRoom(t)
		assertTransitionError(t, r.ToggleMaintenance(t0), StatusOccupied)
	})
}

// ==================== Display ====================

func TestRoom_DisplayStatus(t *testing.T) {
	policy := DefaultPolicy()
	r := occupiedRoom(t)
	checkOut := r.Guest.CheckOutDate // 2024-01-03 14:00

	assert.Equal(t, StatusOccupied, r.DisplayStatus(checkOut.Add(-24*time.Hour), policy))
	assert.Equal(t, StatusDueOut, r.DisplayStatus(checkOut.Add(-3*time.Hour), policy))
	assert.Equal(t, StatusDueOut, r.DisplayStatus(checkOut.Add(time.Hour), policy))

	policy.DueOutSameDay = false
	assert.Equal(t, StatusOccupied, r.DisplayStatus(checkOut.Add(-3*time.Hour), policy))
	assert.Equal(t, StatusDueOut, r.DisplayStatus(checkOut, policy))

	vacant := newTestRoom(t)
	assert.Equal(t, StatusVacantClean, vacant.DisplayStatus(t0, policy))
}

func TestRoom_ValidateDetectsMismatch(t *testing.T) {
	r := newTestRoom(t)
	r.Status = StatusOccupied
	assert.True(t, shared.IsConflict(r.Validate()))

	r = occupiedRoom(t)
	r.Status = StatusVacantClean
	assert.True(t, shared.IsConflict(r.Validate()))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{"jan 31 to leap february", time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)},
		{"jan 31 to february", time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 9, 0, 0, 0, time.UTC)},
		{"mid month", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 2, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)},
		{"across year", time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonths(tt.start, tt.months))
		})
	}
}
