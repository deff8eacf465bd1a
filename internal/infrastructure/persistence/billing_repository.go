package persistence

import (
	"context"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/frontdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository is the append-only payment store
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Append inserts a payment. The unique stay_id index rejects a second payment
// for the same stay.
func (r *GormPaymentRepository) Append(ctx context.Context, p *billing.Payment) error {
	err := r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error
	if err == nil {
		return nil
	}
	mapped := storeError("append payment", err, nil)
	if shared.IsConflict(mapped) {
		return shared.NewConflictError("PAYMENT_EXISTS", "Stay already has a payment")
	}
	return mapped
}

// FindByID returns a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, storeError("find payment", err, errPaymentNotFound())
	}
	return model.ToDomain(), nil
}

// FindByStayID returns the payment that settled a stay
func (r *GormPaymentRepository) FindByStayID(ctx context.Context, stayID uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "stay_id = ?", stayID).Error; err != nil {
		return nil, storeError("find payment by stay", err, errPaymentNotFound())
	}
	return model.ToDomain(), nil
}

// FindByRoom lists a room's payments, newest first
func (r *GormPaymentRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&paymentModels).Error
	if err != nil {
		return nil, storeError("list payments", err, nil)
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// GormServiceChargeRepository stores the ledger lines of active stays
type GormServiceChargeRepository struct {
	db *gorm.DB
}

// NewGormServiceChargeRepository creates a new GormServiceChargeRepository
func NewGormServiceChargeRepository(db *gorm.DB) *GormServiceChargeRepository {
	return &GormServiceChargeRepository{db: db}
}

// Create appends a charge after the stay's existing lines
func (r *GormServiceChargeRepository) Create(ctx context.Context, c *billing.ServiceCharge) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		err := tx.Model(&models.ServiceChargeModel{}).
			Where("stay_id = ?", c.StayID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error
		if err != nil {
			return storeError("add service charge", err, nil)
		}

		model := models.ServiceChargeModelFromDomain(c)
		model.Seq = last + 1
		if err := tx.Create(model).Error; err != nil {
			return storeError("add service charge", err, nil)
		}
		return nil
	})
}

// FindByID returns a charge by ID
func (r *GormServiceChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ServiceCharge, error) {
	var model models.ServiceChargeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, storeError("find service charge", err, errChargeNotFound())
	}
	charge := model.ToDomain()
	return &charge, nil
}

// Delete removes a charge
func (r *GormServiceChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ServiceChargeModel{}, "id = ?", id)
	if result.Error != nil {
		return storeError("remove service charge", result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return errChargeNotFound()
	}
	return nil
}

// FindByStay lists a stay's charges in insertion order
func (r *GormServiceChargeRepository) FindByStay(ctx context.Context, stayID uuid.UUID) ([]billing.ServiceCharge, error) {
	var chargeModels []models.ServiceChargeModel
	err := r.db.WithContext(ctx).
		Where("stay_id = ?", stayID).
		Order("seq ASC").
		Find(&chargeModels).Error
	if err != nil {
		return nil, storeError("list service charges", err, nil)
	}
	charges := make([]billing.ServiceCharge, len(chargeModels))
	for i := range chargeModels {
		charges[i] = chargeModels[i].ToDomain()
	}
	return charges, nil
}

// DeleteByStay removes every charge of a stay
func (r *GormServiceChargeRepository) DeleteByStay(ctx context.Context, stayID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("stay_id = ?", stayID).Delete(&models.ServiceChargeModel{}).Error
	return storeError("discard service charges", err, nil)
}

// GormCatalogRepository manages the service catalog
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Lookup returns an active catalog entry
func (r *GormCatalogRepository) Lookup(ctx context.Context, serviceID uuid.UUID) (*billing.CatalogEntry, error) {
	var model models.ServiceCatalogModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", serviceID, true).
		First(&model).Error
	if err != nil {
		return nil, storeError("lookup service", err, errServiceNotFound())
	}
	return model.ToDomain(), nil
}

// Create adds a catalog entry
func (r *GormCatalogRepository) Create(ctx context.Context, e *billing.CatalogEntry) error {
	err := r.db.WithContext(ctx).Create(models.ServiceCatalogModelFromDomain(e)).Error
	return storeError("create service", err, nil)
}

// Save replaces a catalog entry. Charges already on a ledger keep their snapshot.
func (r *GormCatalogRepository) Save(ctx context.Context, e *billing.CatalogEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceCatalogModel{}).
		Where("id = ?", e.ID).
		Select("*").
		Omit("id").
		Updates(models.ServiceCatalogModelFromDomain(e))
	if result.Error != nil {
		return storeError("save service", result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return errServiceNotFound()
	}
	return nil
}

// FindAll lists catalog entries ordered by name
func (r *GormCatalogRepository) FindAll(ctx context.Context, activeOnly bool) ([]billing.CatalogEntry, error) {
	var entryModels []models.ServiceCatalogModel
	query := r.db.WithContext(ctx).Model(&models.ServiceCatalogModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&entryModels).Error; err != nil {
		return nil, storeError("list services", err, nil)
	}
	entries := make([]billing.CatalogEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

var (
	_ billing.PaymentRepository       = (*GormPaymentRepository)(nil)
	_ billing.ServiceChargeRepository = (*GormServiceChargeRepository)(nil)
	_ billing.CatalogRepository       = (*GormCatalogRepository)(nil)
)
