package models

import (
	"time"

	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoomModel is the persistence model for the Room aggregate.
// The active stay lives in the stays table.
type RoomModel struct {
	AggregateModel
	Number          string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_room_building_number,priority:2"`
	Floor           int              `gorm:"not null;default:0"`
	BuildingID      *uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_room_building_number,priority:1"`
	DailyPrice      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	HourlyBasePrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	HourlyRate      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	OvernightPrice  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MonthlyPrice    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Status          room.RoomStatus  `gorm:"type:varchar(20);not null;default:'VACANT_CLEAN';index"`
	ReturnStatus    room.RoomStatus  `gorm:"type:varchar(20);not null;default:''"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the model and its optional stay row to a domain Room
func (m *RoomModel) ToDomain(stay *StayModel) *room.Room {
	r := &room.Room{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Number:            m.Number,
		Floor:             m.Floor,
		BuildingID:        m.BuildingID,
		Rates: room.Rates{
			DailyPrice:      m.DailyPrice,
			HourlyBasePrice: m.HourlyBasePrice,
			HourlyRate:      m.HourlyRate,
			OvernightPrice:  m.OvernightPrice,
			MonthlyPrice:    m.MonthlyPrice,
		},
		Status:       m.Status,
		ReturnStatus: m.ReturnStatus,
	}
	if stay != nil {
		r.Guest = stay.ToDomain()
	}
	return r
}

// FromDomain populates the model from a domain Room
func (m *RoomModel) FromDomain(r *room.Room) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Number = r.Number
	m.Floor = r.Floor
	m.BuildingID = r.BuildingID
	m.DailyPrice = r.Rates.DailyPrice
	m.HourlyBasePrice = r.Rates.HourlyBasePrice
	m.HourlyRate = r.Rates.HourlyRate
	m.OvernightPrice = r.Rates.OvernightPrice
	m.MonthlyPrice = r.Rates.MonthlyPrice
	m.Status = r.Status
	m.ReturnStatus = r.ReturnStatus
}

// RoomModelFromDomain creates a new persistence model from a domain Room
func RoomModelFromDomain(r *room.Room) *RoomModel {
	m := &RoomModel{}
	m.FromDomain(r)
	return m
}

// StayModel is the active stay of an occupied room
type StayModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoomID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	GuestName    string          `gorm:"type:varchar(200);not null"`
	Phone        string          `gorm:"type:varchar(50)"`
	IDNumber     string          `gorm:"type:varchar(50)"`
	Nationality  string          `gorm:"type:varchar(100)"`
	Notes        string          `gorm:"type:text"`
	CheckInDate  time.Time       `gorm:"not null"`
	CheckOutDate time.Time       `gorm:"not null;index"`
	RentalType   room.RentalType `gorm:"type:varchar(20);not null"`
	Months       int             `gorm:"not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CheckedInBy  string          `gorm:"type:varchar(100)"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StayModel) TableName() string {
	return "stays"
}

// ToDomain converts the model to a domain Stay
func (m *StayModel) ToDomain() *room.Stay {
	return &room.Stay{
		ID:           m.ID,
		GuestName:    m.GuestName,
		Phone:        m.Phone,
		IDNumber:     m.IDNumber,
		Nationality:  m.Nationality,
		Notes:        m.Notes,
		CheckInDate:  m.CheckInDate,
		CheckOutDate: m.CheckOutDate,
		RentalType:   m.RentalType,
		Months:       m.Months,
		TotalAmount:  m.TotalAmount,
		CheckedInBy:  m.CheckedInBy,
		CreatedAt:    m.CreatedAt,
	}
}

// StayModelFromDomain creates the stay row of a room
func StayModelFromDomain(roomID uuid.UUID, s *room.Stay) *StayModel {
	return &StayModel{
		ID:           s.ID,
		RoomID:       roomID,
		GuestName:    s.GuestName,
		Phone:        s.Phone,
		IDNumber:     s.IDNumber,
		Nationality:  s.Nationality,
		Notes:        s.Notes,
		CheckInDate:  s.CheckInDate,
		CheckOutDate: s.CheckOutDate,
		RentalType:   s.RentalType,
		Months:       s.Months,
		TotalAmount:  s.TotalAmount,
		CheckedInBy:  s.CheckedInBy,
		CreatedAt:    s.CreatedAt,
	}
}
