package persistence

import (
	"errors"

	"github.com/frontdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// storeError maps a GORM failure to a domain error. Record-not-found becomes
// notFound, unique violations become a conflict and everything else is a
// persistence error carrying op.
func storeError(op string, err error, notFound *shared.DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError("DUPLICATE_RECORD", op+": record already exists")
	default:
		return shared.NewPersistenceError(op, err)
	}
}

func errRoomNotFound() *shared.DomainError {
	return shared.NewNotFoundError("ROOM_NOT_FOUND", "Room not found")
}

func errPaymentNotFound() *shared.DomainError {
	return shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")
}

func errChargeNotFound() *shared.DomainError {
	return shared.NewNotFoundError("CHARGE_NOT_FOUND", "Service charge not found")
}

func errServiceNotFound() *shared.DomainError {
	return shared.NewNotFoundError("SERVICE_NOT_FOUND", "Service not found")
}
