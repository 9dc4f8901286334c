/*
errors.go - Error taxonomy for the studio domain

ERROR CATEGORIES:
  ValidationError           missing or malformed input
  NotFoundError             a referenced entity is absent
  InsufficientBalanceError  customer has no class credits left
  AlreadyCancelledError     cancelling a cancelled record
  anything else             unexpected (storage, encoding)

Structured errors unwrap to a sentinel so callers can branch with
errors.Is without caring about the details:

    if errors.Is(err, studio.ErrNotFound) { ... }

The HTTP layer (api/handlers.go) maps these to status codes.
*/
package studio

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient class balance")
	ErrAlreadyCancelled    = errors.New("already cancelled")

	// ErrDuplicateCheckinID is returned by a store when a checkinId is
	// already taken. The check-in workflow retries on it.
	ErrDuplicateCheckinID = errors.New("duplicate checkin id")

	// ErrDuplicateKey is returned when a business key already exists.
	ErrDuplicateKey = errors.New("duplicate business key")

	// ErrBusy is returned when the store could not obtain a write lock.
	ErrBusy = errors.New("store busy")
)

// Messages shown to API callers.
const (
	MsgMissingFields      = "Missing required fields"
	MsgCustomerNotFound   = "Customer not found"
	MsgClassNotFound      = "Class not found"
	MsgInstructorNotFound = "Instructor not found"
	MsgPackageNotFound    = "Package not found"
	MsgAttendanceNotFound = "Attendance record not found"
	MsgNoBalance          = "Customer has no remaining class balance"
	MsgAlreadyCancelled   = "Check-in already cancelled"
	MsgInvalidStatus      = "Invalid status"
	MsgInvalidDate        = "Invalid date (use YYYY-MM-DD)"
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes rejected input.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Field)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing entity and its business key.
type NotFoundError struct {
	Kind    string // "customer", "class", ...
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientBalanceError is returned when a customer's balance is <= 0.
type InsufficientBalanceError struct {
	CustomerID string
	Balance    int
}

func (e *InsufficientBalanceError) Error() string {
	return MsgNoBalance
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// AlreadyCancelledError is returned when cancelling twice.
type AlreadyCancelledError struct {
	CheckinID CheckinID
}

func (e *AlreadyCancelledError) Error() string {
	return MsgAlreadyCancelled
}

func (e *AlreadyCancelledError) Unwrap() error { return ErrAlreadyCancelled }

// =============================================================================
// CONSTRUCTORS
// =============================================================================

func missingFields(field string) error {
	return &ValidationError{Message: MsgMissingFields, Field: field}
}

func customerNotFound(id string) error {
	return &NotFoundError{Kind: "customer", Key: id, Message: MsgCustomerNotFound}
}

func classNotFound(id string) error {
	return &NotFoundError{Kind: "class", Key: id, Message: MsgClassNotFound}
}

func instructorNotFound(id string) error {
	return &NotFoundError{Kind: "instructor", Key: id, Message: MsgInstructorNotFound}
}

func attendanceNotFound(id CheckinID) error {
	return &NotFoundError{Kind: "attendance", Key: fmt.Sprint(int64(id)), Message: MsgAttendanceNotFound}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrDuplicateKey)
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the operation may succeed when repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDuplicateCheckinID) || errors.Is(err, ErrBusy)
}
