package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would get its own in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newPersistedRoom(t *testing.T, repo *GormRoomRepository, number string) *room.Room {
	t.Helper()

	hourlyBase := decimal.NewFromInt(100000)
	r, err := room.NewRoom(number, 1, nil, room.Rates{
		DailyPrice:      decimal.NewFromInt(500000),
		HourlyBasePrice: &hourlyBase,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func checkInGuest(t *testing.T, r *room.Room, guest string) {
	t.Helper()

	stay, err := room.NewStay(room.StayParams{
		GuestName:    guest,
		Phone:        "0901234567",
		CheckInDate:  testNow,
		CheckOutDate: testNow.Add(48 * time.Hour),
		RentalType:   room.RentalDaily,
		CheckedInBy:  "reception",
	}, testNow)
	require.NoError(t, err)

	policy := room.DefaultPolicy()
	require.NoError(t, r.CheckIn(stay, billing.NewPricingEngine(policy), policy, testNow))
}

// ==== Queries ====

func TestGormRoomRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db)
	ctx := context.Background()

	t.Run("loads a vacant room", func(t *testing.T) {
		created := newPersistedRoom(t, repo, "101")

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "101", found.Number)
		assert.Equal(t, room.StatusVacantClean, found.Status)
		assert.Equal(t, 1, found.Version)
		assert.True(t, found.Rates.DailyPrice.Equal(decimal.NewFromInt(500000)))
		require.NotNil(t, found.Rates.HourlyBasePrice)
		assert.True(t, found.Rates.HourlyBasePrice.Equal(decimal.NewFromInt(100000)))
		assert.Nil(t, found.Rates.OvernightPrice)
		assert.Nil(t, found.Guest)
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormRoomRepository_FindByNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db)
	ctx := context.Background()

	newPersistedRoom(t, repo, "202")

	found, err := repo.FindByNumber(ctx, nil, " 202 ")
	require.NoError(t, err)
	assert.Equal(t, "202", found.Number)

	building := uuid.New()
	_, err = repo.FindByNumber(ctx, &building, "202")
	assert.True(t, shared.IsNotFound(err))
}

func TestGormRoomRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db)
	ctx := context.Background()

	newPersistedRoom(t, repo, "303")
	newPersistedRoom(t, repo, "101")
	newPersistedRoom(t, repo, "202")

	rooms, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "101", rooms[0].Number)
	assert.Equal(t, "202", rooms[1].Number)
	assert.Equal(t, "303", rooms[2].Number)

	building := uuid.New()
	rooms, err = repo.FindAll(ctx, &building)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

// ==== Save ====

func TestGormRoomRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the stay and bumps the version", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormRoomRepository(db)
		r := newPersistedRoom(t, repo, "101")
		newPersistedRoom(t, repo, "102")

		checkInGuest(t, r, "Nguyen Van A")
		require.NoError(t, repo.Save(ctx, r))
		assert.Equal(t, 2, r.Version)

		found, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, room.StatusOccupied, found.Status)
		assert.Equal(t, 2, found.Version)
		require.NotNil(t, found.Guest)
		assert.Equal(t, r.Guest.ID, found.Guest.ID)
		assert.Equal(t, "Nguyen Van A", found.Guest.GuestName)
		assert.Equal(t, room.RentalDaily, found.Guest.RentalType)
		assert.True(t, found.Guest.CheckOutDate.Equal(testNow.Add(48*time.Hour)))
		assert.True(t, found.Guest.TotalAmount.Equal(r.Guest.TotalAmount))

		occupied, err := repo.FindOccupied(ctx)
		require.NoError(t, err)
		require.Len(t, occupied, 1)
		assert.Equal(t, "101", occupied[0].Number)
		assert.NotNil(t, occupied[0].Guest)
	})

	t.Run("checkout removes the stay row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormRoomRepository(db)
		r := newPersistedRoom(t, repo, "101")
		checkInGuest(t, r, "Tran Thi B")
		require.NoError(t, repo.Save(ctx, r))

		_, err := r.Checkout(room.Receipt{PaymentID: uuid.New(), Total: decimal.NewFromInt(1100000), Method: "CASH"}, testNow.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, r))

		found, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, room.StatusVacantDirty, found.Status)
		assert.Nil(t, found.Guest)

		var stays int64
		require.NoError(t, db.Model(&models.StayModel{}).Count(&stays).Error)
		assert.Zero(t, stays)
	})

	t.Run("maintenance return status round-trips", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormRoomRepository(db)
		r := newPersistedRoom(t, repo, "101")

		require.NoError(t, r.ToggleMaintenance(testNow))
		require.NoError(t, repo.Save(ctx, r))

		found, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, room.StatusOutOfOrder, found.Status)
		assert.Equal(t, room.StatusVacantClean, found.ReturnStatus)

		require.NoError(t, found.ToggleMaintenance(testNow))
		require.NoError(t, repo.Save(ctx, found))

		back, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, room.StatusVacantClean, back.Status)
		assert.Equal(t, room.RoomStatus(""), back.ReturnStatus)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormRoomRepository(db)
		r := newPersistedRoom(t, repo, "101")

		first, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)

		require.NoError(t, first.ToggleMaintenance(testNow))
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.ToggleMaintenance(testNow))
		err = repo.Save(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.True(t, shared.IsConflict(err))
		assert.Equal(t, 1, second.Version)
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormRoomRepository(db)

		r, err := room.NewRoom("999", 9, nil, room.Rates{DailyPrice: decimal.NewFromInt(1)}, testNow)
		require.NoError(t, err)

		err = repo.Save(ctx, r)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormRoomRepository_Create_DuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db)
	building := uuid.New()

	first, err := room.NewRoom("101", 1, &building, room.Rates{DailyPrice: decimal.NewFromInt(1)}, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), first))

	dup, err := room.NewRoom("101", 1, &building, room.Rates{DailyPrice: decimal.NewFromInt(1)}, testNow)
	require.NoError(t, err)
	err = repo.Create(context.Background(), dup)
	assert.True(t, shared.IsConflict(err))
}
