package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("record not found")
	err := NewNotFoundError("doctor not found", cause)

	assert.Equal(t, "NOT_FOUND: doctor not found: record not found", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := &AppError{Type: ErrorTypeConflict, Message: "slot taken"}
	assert.Equal(t, "CONFLICT: slot taken", plain.Error())
}

func TestErrorTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("booking: %w", &AppError{Type: ErrorTypeValidation, Message: "bad input"})
	assert.Equal(t, ErrorTypeValidation, ErrorTypeOf(wrapped))
	assert.Equal(t, ErrorTypeInternal, ErrorTypeOf(errors.New("boom")))
	assert.Equal(t, ErrorTypeInternal, ErrorTypeOf(NewInternalError("x", nil)))
}

func TestAppErrorConstructors(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, NewValidationError("bad", nil).Type)
	assert.Equal(t, ErrorTypeConflict, NewConflictError("taken", nil).Type)
	assert.Equal(t, ErrorTypeNotFound, ErrorTypeOf(NewNotFoundError("missing", nil)))
}
