package billing

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository is the append-only payment store
type PaymentRepository interface {
	// Append inserts a payment. A second payment for the same stay is a conflict.
	Append(ctx context.Context, payment *Payment) error

	// FindByID returns a payment or a NotFoundError
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByStayID returns the payment settling a stay or a NotFoundError
	FindByStayID(ctx context.Context, stayID uuid.UUID) (*Payment, error)

	// FindByRoom lists a room's payments, newest first
	FindByRoom(ctx context.Context, roomID uuid.UUID) ([]Payment, error)
}

// ServiceChargeRepository stores the ledger lines of active stays
type ServiceChargeRepository interface {
	Create(ctx context.Context, charge *ServiceCharge) error

	// FindByID returns a charge or a NotFoundError
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceCharge, error)

	// Delete removes a charge; a missing charge is a NotFoundError
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByStay lists a stay's charges in insertion order
	FindByStay(ctx context.Context, stayID uuid.UUID) ([]ServiceCharge, error)

	// DeleteByStay removes every charge of a stay
	DeleteByStay(ctx context.Context, stayID uuid.UUID) error
}

// CatalogRepository manages the service catalog
type CatalogRepository interface {
	ServiceCatalog
	Create(ctx context.Context, entry *CatalogEntry) error
	Save(ctx context.Context, entry *CatalogEntry) error
	FindAll(ctx context.Context, activeOnly bool) ([]CatalogEntry, error)
}
