package billing

import (
	"context"
	"strings"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogEntry is a sellable service with its current price
type CatalogEntry struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	Unit     string
	IsActive bool
}

// NewCatalogEntry creates an active catalog entry
func NewCatalogEntry(name string, price decimal.Decimal, unit string) (*CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_SERVICE_NAME", "Service name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Service price cannot be negative")
	}
	if !fitsScale(price, PriceScale) {
		return nil, shared.NewValidationError("INVALID_PRICE", "Service price allows at most 2 decimal places")
	}
	return &CatalogEntry{
		ID:       uuid.New(),
		Name:     name,
		Price:    price,
		Unit:     strings.TrimSpace(unit),
		IsActive: true,
	}, nil
}

// ServiceCatalog resolves the current price of a service
type ServiceCatalog interface {
	// Lookup returns the entry or a NotFoundError. Inactive entries are not found.
	Lookup(ctx context.Context, serviceID uuid.UUID) (*CatalogEntry, error)
}
