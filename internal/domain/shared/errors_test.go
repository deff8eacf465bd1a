package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Kinds(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		conflict    bool
		validation  bool
		notFound    bool
		persistence bool
	}{
		{"conflict", NewConflictError("ROOM_OCCUPIED", "occupied"), true, false, false, false},
		{"validation", NewValidationError("INVALID_QUANTITY", "bad"), false, true, false, false},
		{"not found", NewNotFoundError("SERVICE_NOT_FOUND", "missing"), false, false, true, false},
		{"persistence", NewPersistenceError("save room", errors.New("db down")), false, false, false, true},
		{"transition", NewTransitionError("check out", "VACANT_CLEAN"), true, false, false, false},
		{"wrapped", fmt.Errorf("outer: %w", NewValidationError("X", "y")), false, true, false, false},
		{"plain", errors.New("plain"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.conflict, IsConflict(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.persistence, IsPersistence(tt.err))
		})
	}
}

func TestPersistenceError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("append payment", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "append payment")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestTransitionError_Message(t *testing.T) {
	err := NewTransitionError("check in", "OCCUPIED")
	assert.Equal(t, "cannot check in: room is OCCUPIED", err.Error())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDomainError_IsMatchesKindAndCode(t *testing.T) {
	err := NewNotFoundError("NOT_FOUND", "room 101 not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, NewNotFoundError("ROOM_NOT_FOUND", "x"), ErrNotFound)
}
