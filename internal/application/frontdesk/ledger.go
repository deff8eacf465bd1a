package frontdesk

import (
	"context"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceLedger keeps the ancillary charges of active stays
type ServiceLedger struct {
	catalog billing.ServiceCatalog
	charges billing.ServiceChargeRepository
	clock   shared.Clock
	logger  *zap.Logger
}

// NewServiceLedger creates a new ServiceLedger
func NewServiceLedger(catalog billing.ServiceCatalog, charges billing.ServiceChargeRepository, clock shared.Clock, logger *zap.Logger) *ServiceLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ServiceLedger{
		catalog: catalog,
		charges: charges,
		clock:   clock,
		logger:  logger,
	}
}

// AddCharge prices quantity units of a catalog service at its current price
// and records the charge against the stay
func (l *ServiceLedger) AddCharge(ctx context.Context, stayID, serviceID uuid.UUID, quantity decimal.Decimal, addedBy string) (*billing.ServiceCharge, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}

	entry, err := l.catalog.Lookup(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	charge, err := billing.NewServiceCharge(stayID, *entry, quantity, addedBy, l.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := l.charges.Create(ctx, charge); err != nil {
		return nil, err
	}

	l.logger.Debug("service charge added",
		zap.String("stay_id", stayID.String()),
		zap.String("charge_id", charge.ID.String()),
		zap.String("service", charge.ServiceName),
		zap.String("total", charge.TotalPrice.String()),
	)
	return charge, nil
}

// GetCharge returns a single charge
func (l *ServiceLedger) GetCharge(ctx context.Context, chargeID uuid.UUID) (*billing.ServiceCharge, error) {
	return l.charges.FindByID(ctx, chargeID)
}

// RemoveCharge hard-deletes a charge
func (l *ServiceLedger) RemoveCharge(ctx context.Context, chargeID uuid.UUID) error {
	if err := l.charges.Delete(ctx, chargeID); err != nil {
		return err
	}
	l.logger.Debug("service charge removed", zap.String("charge_id", chargeID.String()))
	return nil
}

// Charges lists a stay's charges in the order they were added
func (l *ServiceLedger) Charges(ctx context.Context, stayID uuid.UUID) ([]billing.ServiceCharge, error) {
	return l.charges.FindByStay(ctx, stayID)
}

// Subtotal sums a stay's charges; a stay with none has a zero subtotal
func (l *ServiceLedger) Subtotal(ctx context.Context, stayID uuid.UUID) (decimal.Decimal, error) {
	charges, err := l.charges.FindByStay(ctx, stayID)
	if err != nil {
		return decimal.Zero, err
	}
	return billing.SumCharges(charges), nil
}

// DiscardStay removes every charge of a stay once it has been settled or cancelled
func (l *ServiceLedger) DiscardStay(ctx context.Context, stayID uuid.UUID) error {
	return l.charges.DeleteByStay(ctx, stayID)
}
