package services

import "fmt"

// DenyReason is a fixed, user-facing access denial reason.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyWrongRole       DenyReason = "wrong_role"
	DenyConsentRequired DenyReason = "consent_required"
	DenyNotAssigned     DenyReason = "not_assigned"
)

// AccessError carries the gate's denial reason. Nothing is ever persisted
// before one of these is returned.
type AccessError struct {
	Reason DenyReason
}

func (e *AccessError) Error() string {
	return "access denied: " + string(e.Reason)
}

func NewAccessError(reason DenyReason) error {
	return &AccessError{Reason: reason}
}

// ValidationError rejects out-of-range input before scoring.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError means the durable write or read failed or timed out. The whole
// operation fails atomically and is safe to retry.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(err error) error {
	return &StorageError{Err: err}
}

// AsAccessError returns the denial reason when err came from the gate.
func AsAccessError(err error) (*AccessError, bool) {
	ae, ok := err.(*AccessError)
	return ae, ok
}

// AsValidationError returns the field error when err is a validation failure.
func AsValidationError(err error) (*ValidationError, bool) {
	ve, ok := err.(*ValidationError)
	return ve, ok
}

// AsStorageError returns the wrapped cause when err is a storage failure.
func AsStorageError(err error) (*StorageError, bool) {
	se, ok := err.(*StorageError)
	return se, ok
}
