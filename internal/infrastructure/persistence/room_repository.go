package persistence

import (
	"context"
	"strings"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoomRepository implements room.RoomRepository using GORM.
// A room row and its stay row are written in one transaction.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID loads a room with its active stay
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	var model models.RoomModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, storeError("find room", err, errRoomNotFound())
	}
	rooms, err := r.attachStays(ctx, []models.RoomModel{model})
	if err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

// FindByNumber loads a room by its number within a building
func (r *GormRoomRepository) FindByNumber(ctx context.Context, buildingID *uuid.UUID, number string) (*room.Room, error) {
	var model models.RoomModel
	query := r.db.WithContext(ctx).Where("number = ?", strings.TrimSpace(number))
	if buildingID != nil {
		query = query.Where("building_id = ?", *buildingID)
	} else {
		query = query.Where("building_id IS NULL")
	}
	if err := query.First(&model).Error; err != nil {
		return nil, storeError("find room by number", err,
			shared.NewNotFoundError("ROOM_NOT_FOUND", "Room "+number+" not found"))
	}
	rooms, err := r.attachStays(ctx, []models.RoomModel{model})
	if err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

// FindAll lists rooms ordered by number, optionally within one building
func (r *GormRoomRepository) FindAll(ctx context.Context, buildingID *uuid.UUID) ([]room.Room, error) {
	var roomModels []models.RoomModel
	query := r.db.WithContext(ctx).Model(&models.RoomModel{})
	if buildingID != nil {
		query = query.Where("building_id = ?", *buildingID)
	}
	if err := query.Order("number ASC").Find(&roomModels).Error; err != nil {
		return nil, storeError("list rooms", err, nil)
	}
	return r.attachStays(ctx, roomModels)
}

// FindOccupied lists rooms that have a stay row
func (r *GormRoomRepository) FindOccupied(ctx context.Context) ([]room.Room, error) {
	var roomModels []models.RoomModel
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.StayModel{}).Select("room_id")).
		Order("number ASC").
		Find(&roomModels).Error
	if err != nil {
		return nil, storeError("list occupied rooms", err, nil)
	}
	return r.attachStays(ctx, roomModels)
}

// Create inserts a new room and its stay, if any
func (r *GormRoomRepository) Create(ctx context.Context, rm *room.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.RoomModelFromDomain(rm)).Error; err != nil {
			return storeError("create room", err, nil)
		}
		if rm.Guest != nil {
			if err := tx.Create(models.StayModelFromDomain(rm.ID, rm.Guest)).Error; err != nil {
				return storeError("create stay", err, nil)
			}
		}
		return nil
	})
}

// Save writes the room if the stored version still matches rm.Version, then
// replaces its stay row. On success rm.Version is incremented.
func (r *GormRoomRepository) Save(ctx context.Context, rm *room.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.RoomModelFromDomain(rm)
		model.Version = rm.Version + 1

		result := tx.Model(&models.RoomModel{}).
			Where("id = ? AND version = ?", rm.ID, rm.Version).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return storeError("save room", result.Error, nil)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.RoomModel{}).Where("id = ?", rm.ID).Count(&count).Error; err != nil {
				return storeError("save room", err, nil)
			}
			if count == 0 {
				return errRoomNotFound()
			}
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Where("room_id = ?", rm.ID).Delete(&models.StayModel{}).Error; err != nil {
			return storeError("clear stay", err, nil)
		}
		if rm.Guest != nil {
			if err := tx.Create(models.StayModelFromDomain(rm.ID, rm.Guest)).Error; err != nil {
				return storeError("save stay", err, nil)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	rm.Version++
	return nil
}

// attachStays loads the stay rows of the given rooms in one query
func (r *GormRoomRepository) attachStays(ctx context.Context, roomModels []models.RoomModel) ([]room.Room, error) {
	rooms := make([]room.Room, 0, len(roomModels))
	if len(roomModels) == 0 {
		return rooms, nil
	}

	ids := make([]uuid.UUID, len(roomModels))
	for i := range roomModels {
		ids[i] = roomModels[i].ID
	}

	var stays []models.StayModel
	if err := r.db.WithContext(ctx).Where("room_id IN ?", ids).Find(&stays).Error; err != nil {
		return nil, storeError("load stays", err, nil)
	}
	byRoom := make(map[uuid.UUID]*models.StayModel, len(stays))
	for i := range stays {
		byRoom[stays[i].RoomID] = &stays[i]
	}

	for i := range roomModels {
		rooms = append(rooms, *roomModels[i].ToDomain(byRoom[roomModels[i].ID]))
	}
	return rooms, nil
}

var _ room.RoomRepository = (*GormRoomRepository)(nil)
