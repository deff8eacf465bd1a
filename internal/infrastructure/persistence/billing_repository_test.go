package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, roomID uuid.UUID, stayID uuid.UUID, at time.Time) *billing.Payment {
	t.Helper()

	stay := room.Stay{
		ID:           stayID,
		GuestName:    "Le Van C",
		CheckInDate:  at.Add(-24 * time.Hour),
		CheckOutDate: at,
		RentalType:   room.RentalDaily,
		CheckedInBy:  "reception",
	}
	p, err := billing.NewPayment(billing.PaymentParams{
		RoomID:           roomID,
		RoomNumber:       "101",
		Stay:             stay,
		FinalCheckOut:    at,
		Quote:            billing.Quote{Amount: decimal.NewFromInt(500000), Units: 1},
		ServicesSubtotal: decimal.NewFromInt(30000),
		VATRate:          decimal.NewFromInt(10),
		Currency:         valueobject.VND,
		Method:           billing.PaymentMethodCash,
		ProcessedBy:      "cashier",
	}, at)
	require.NoError(t, err)
	return p
}

// ==== Payments ====

func TestGormPaymentRepository_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a payment snapshot", func(t *testing.T) {
		repo := NewGormPaymentRepository(setupTestDB(t))
		p := newTestPayment(t, uuid.New(), uuid.New(), testNow)

		require.NoError(t, repo.Append(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.StayID, found.StayID)
		assert.Equal(t, "Le Van C", found.GuestName)
		assert.Equal(t, billing.PaymentMethodCash, found.Method)
		assert.Equal(t, valueobject.VND, found.Currency)
		assert.Equal(t, 1, found.BilledUnits)
		assert.True(t, found.VATAmount.Equal(decimal.NewFromInt(53000)), "vat %s", found.VATAmount)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(583000)), "total %s", found.Total)

		byStay, err := repo.FindByStayID(ctx, p.StayID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, byStay.ID)
	})

	t.Run("second payment for a stay is a conflict", func(t *testing.T) {
		repo := NewGormPaymentRepository(setupTestDB(t))
		roomID, stayID := uuid.New(), uuid.New()

		require.NoError(t, repo.Append(ctx, newTestPayment(t, roomID, stayID, testNow)))
		err := repo.Append(ctx, newTestPayment(t, roomID, stayID, testNow))
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("unknown payment is not found", func(t *testing.T) {
		repo := NewGormPaymentRepository(setupTestDB(t))

		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
		_, err = repo.FindByStayID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormPaymentRepository_FindByRoom(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPaymentRepository(setupTestDB(t))
	roomID := uuid.New()

	older := newTestPayment(t, roomID, uuid.New(), testNow)
	newer := newTestPayment(t, roomID, uuid.New(), testNow.Add(72*time.Hour))
	require.NoError(t, repo.Append(ctx, older))
	require.NoError(t, repo.Append(ctx, newer))
	require.NoError(t, repo.Append(ctx, newTestPayment(t, uuid.New(), uuid.New(), testNow)))

	payments, err := repo.FindByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, newer.ID, payments[0].ID)
	assert.Equal(t, older.ID, payments[1].ID)
}

// ==== Service charges ====

func TestGormServiceChargeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormServiceChargeRepository(setupTestDB(t))
	stayID := uuid.New()

	water := billing.CatalogEntry{ID: uuid.New(), Name: "Water", Price: decimal.NewFromInt(10000), Unit: "bottle", IsActive: true}
	laundry := billing.CatalogEntry{ID: uuid.New(), Name: "Laundry", Price: decimal.NewFromInt(40000), Unit: "kg", IsActive: true}

	first, err := billing.NewServiceCharge(stayID, water, decimal.NewFromInt(3), "reception", testNow)
	require.NoError(t, err)
	second, err := billing.NewServiceCharge(stayID, laundry, decimal.RequireFromString("1.5"), "reception", testNow)
	require.NoError(t, err)
	other, err := billing.NewServiceCharge(uuid.New(), water, decimal.NewFromInt(1), "reception", testNow)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	t.Run("lists a stay's charges in insertion order", func(t *testing.T) {
		charges, err := repo.FindByStay(ctx, stayID)
		require.NoError(t, err)
		require.Len(t, charges, 2)
		assert.Equal(t, first.ID, charges[0].ID)
		assert.Equal(t, second.ID, charges[1].ID)
		assert.True(t, billing.SumCharges(charges).Equal(decimal.NewFromInt(90000)))
	})

	t.Run("finds and deletes a single charge", func(t *testing.T) {
		found, err := repo.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Laundry", found.ServiceName)
		assert.True(t, found.Quantity.Equal(decimal.RequireFromString("1.5")))

		require.NoError(t, repo.Delete(ctx, second.ID))
		_, err = repo.FindByID(ctx, second.ID)
		assert.True(t, shared.IsNotFound(err))

		assert.True(t, shared.IsNotFound(repo.Delete(ctx, second.ID)))
	})

	t.Run("discards every charge of a stay", func(t *testing.T) {
		require.NoError(t, repo.DeleteByStay(ctx, stayID))

		charges, err := repo.FindByStay(ctx, stayID)
		require.NoError(t, err)
		assert.Empty(t, charges)

		kept, err := repo.FindByStay(ctx, other.StayID)
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}

// ==== Catalog ====

func TestGormCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCatalogRepository(setupTestDB(t))

	water, err := billing.NewCatalogEntry("Water", decimal.NewFromInt(10000), "bottle")
	require.NoError(t, err)
	breakfast, err := billing.NewCatalogEntry("Breakfast", decimal.NewFromInt(60000), "set")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, water))
	require.NoError(t, repo.Create(ctx, breakfast))

	t.Run("lookup returns active entries", func(t *testing.T) {
		found, err := repo.Lookup(ctx, water.ID)
		require.NoError(t, err)
		assert.Equal(t, "Water", found.Name)
		assert.True(t, found.IsActive)
	})

	t.Run("deactivated entries are hidden from lookup", func(t *testing.T) {
		breakfast.IsActive = false
		breakfast.Price = decimal.NewFromInt(65000)
		require.NoError(t, repo.Save(ctx, breakfast))

		_, err := repo.Lookup(ctx, breakfast.ID)
		assert.True(t, shared.IsNotFound(err))

		active, err := repo.FindAll(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, water.ID, active[0].ID)

		all, err := repo.FindAll(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Breakfast", all[0].Name)
		assert.False(t, all[0].IsActive)
		assert.True(t, all[0].Price.Equal(decimal.NewFromInt(65000)))
	})

	t.Run("saving an unknown entry is not found", func(t *testing.T) {
		ghost, err := billing.NewCatalogEntry("Ghost", decimal.Zero, "")
		require.NoError(t, err)
		assert.True(t, shared.IsNotFound(repo.Save(ctx, ghost)))
	})
}
