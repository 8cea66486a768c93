/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The store and services wrap these; the API maps them to HTTP status codes.

ERROR CATEGORIES:
  1. Not found - Missing worker, row, period
  2. Client errors - Validation failures, malformed month/year
  3. Conflicts - Unique rows (attendance day, PIN, payment month), status transitions
  4. Auth - Missing or insufficient session

SEE ALSO:
  - api/handlers.go: statusFor maps these to HTTP codes
  - store/sqlite: Translates constraint violations into these
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with an existing row or state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMonth is returned for month outside 1..12 or year < 1.
	ErrInvalidMonth = errors.New("invalid month/year")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrUnauthorized is returned when no valid session or PIN is presented.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a worker session touches another worker's data.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// DuplicatePINError is returned when an active worker or the administrator
// already uses the PIN. An empty ExistingWorkerID means the administrator.
type DuplicatePINError struct {
	ExistingWorkerID WorkerID
}

func (e *DuplicatePINError) Error() string {
	if e.ExistingWorkerID == "" {
		return "pin already in use by the administrator"
	}
	return fmt.Sprintf("pin already in use by active worker %s", e.ExistingWorkerID)
}

func (e *DuplicatePINError) Unwrap() error { return ErrConflict }

// TransitionError is returned when a stored status cannot move to the requested one.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidPeriod)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
