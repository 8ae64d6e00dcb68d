// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/utils"
)

// ValidationError reports a malformed submission or an unmet precondition.
// Nothing was changed; the caller may correct the input and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// validationFromStruct converts a validator.ValidationErrors result into a
// single ValidationError for the first failing field.
func validationFromStruct(err error) *ValidationError {
	fieldErrors := utils.GetValidationErrors(err)
	if len(fieldErrors) > 0 {
		return &ValidationError{Field: fieldErrors[0].Field, Message: fieldErrors[0].Message}
	}
	return &ValidationError{Message: err.Error()}
}

// StateConflictError reports an attempted transition from a terminal or
// incompatible request state, including losing a concurrent review race.
// The caller may re-fetch the request and decide whether to retry.
type StateConflictError struct {
	RequestID uuid.UUID
	Status    models.RequestStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("request %s cannot transition from status %q", e.RequestID, e.Status)
}

// PersistenceError reports a repository failure during a write. Any
// enclosing transaction has been rolled back in full; the caller must check
// the persisted request status before retrying.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStateConflict(err error) bool {
	var ce *StateConflictError
	return errors.As(err, &ce)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
