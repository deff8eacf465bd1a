package models

import (
	"time"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/room"
	"github.com/frontdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a settled stay. Rows are never updated.
type PaymentModel struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey"`
	RoomID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	RoomNumber       string                `gorm:"type:varchar(20);not null"`
	StayID           uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	GuestName        string                `gorm:"type:varchar(200);not null"`
	RentalType       room.RentalType       `gorm:"type:varchar(20);not null"`
	BilledUnits      int                   `gorm:"not null;default:0"`
	CheckInDate      time.Time             `gorm:"not null"`
	CheckOutDate     time.Time             `gorm:"not null"`
	RoomCharge       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ServicesSubtotal decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	VATRate          decimal.Decimal       `gorm:"type:decimal(5,2);not null;default:0"`
	VATAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Total            decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency         valueobject.Currency  `gorm:"type:varchar(3);not null"`
	Method           billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	ProcessedBy      string                `gorm:"type:varchar(100)"`
	CheckedInBy      string                `gorm:"type:varchar(100)"`
	CreatedAt        time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		ID:               m.ID,
		RoomID:           m.RoomID,
		RoomNumber:       m.RoomNumber,
		StayID:           m.StayID,
		GuestName:        m.GuestName,
		RentalType:       m.RentalType,
		BilledUnits:      m.BilledUnits,
		CheckInDate:      m.CheckInDate,
		CheckOutDate:     m.CheckOutDate,
		RoomCharge:       m.RoomCharge,
		ServicesSubtotal: m.ServicesSubtotal,
		VATRate:          m.VATRate,
		VATAmount:        m.VATAmount,
		Total:            m.Total,
		Currency:         m.Currency,
		Method:           m.Method,
		ProcessedBy:      m.ProcessedBy,
		CheckedInBy:      m.CheckedInBy,
		CreatedAt:        m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:               p.ID,
		RoomID:           p.RoomID,
		RoomNumber:       p.RoomNumber,
		StayID:           p.StayID,
		GuestName:        p.GuestName,
		RentalType:       p.RentalType,
		BilledUnits:      p.BilledUnits,
		CheckInDate:      p.CheckInDate,
		CheckOutDate:     p.CheckOutDate,
		RoomCharge:       p.RoomCharge,
		ServicesSubtotal: p.ServicesSubtotal,
		VATRate:          p.VATRate,
		VATAmount:        p.VATAmount,
		Total:            p.Total,
		Currency:         p.Currency,
		Method:           p.Method,
		ProcessedBy:      p.ProcessedBy,
		CheckedInBy:      p.CheckedInBy,
		CreatedAt:        p.CreatedAt,
	}
}

// ServiceChargeModel is a ledger line of an active stay
type ServiceChargeModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StayID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null"`
	ServiceName string          `gorm:"type:varchar(200);not null"`
	Unit        string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AddedBy     string          `gorm:"type:varchar(100)"`
	CreatedAt   time.Time       `gorm:"not null"`
	// Seq orders a stay's charges when several share a timestamp.
	Seq         int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ServiceChargeModel) TableName() string {
	return "service_charges"
}

// ToDomain converts the model to a domain ServiceCharge
func (m *ServiceChargeModel) ToDomain() billing.ServiceCharge {
	return billing.ServiceCharge{
		ID:          m.ID,
		StayID:      m.StayID,
		ServiceID:   m.ServiceID,
		ServiceName: m.ServiceName,
		Unit:        m.Unit,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		AddedBy:     m.AddedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// ServiceChargeModelFromDomain creates a new persistence model from a domain ServiceCharge
func ServiceChargeModelFromDomain(c *billing.ServiceCharge) *ServiceChargeModel {
	return &ServiceChargeModel{
		ID:          c.ID,
		StayID:      c.StayID,
		ServiceID:   c.ServiceID,
		ServiceName: c.ServiceName,
		Unit:        c.Unit,
		Quantity:    c.Quantity,
		UnitPrice:   c.UnitPrice,
		TotalPrice:  c.TotalPrice,
		AddedBy:     c.AddedBy,
		CreatedAt:   c.CreatedAt,
	}
}

// ServiceCatalogModel is a sellable service
type ServiceCatalogModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit     string          `gorm:"type:varchar(50)"`
	IsActive bool            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ServiceCatalogModel) TableName() string {
	return "service_catalog"
}

// ToDomain converts the model to a domain CatalogEntry
func (m *ServiceCatalogModel) ToDomain() *billing.CatalogEntry {
	return &billing.CatalogEntry{
		ID:       m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Unit:     m.Unit,
		IsActive: m.IsActive,
	}
}

// ServiceCatalogModelFromDomain creates a new persistence model from a domain CatalogEntry
func ServiceCatalogModelFromDomain(e *billing.CatalogEntry) *ServiceCatalogModel {
	return &ServiceCatalogModel{
		ID:       e.ID,
		Name:     e.Name,
		Price:    e.Price,
		Unit:     e.Unit,
		IsActive: e.IsActive,
	}
}
