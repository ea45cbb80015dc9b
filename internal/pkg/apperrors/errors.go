package apperrors

import (
	"errors"
	"time"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Workflow rule violations
var (
	ErrCooldownActive          = errors.New("rating cooldown active")
	ErrActiveAssignmentExists  = errors.New("an active assignment already exists")
	ErrInvalidTransition       = errors.New("invalid state transition")
	ErrDuplicatePendingRequest = errors.New("a pending request already exists")
	ErrSelfRequest             = errors.New("cannot target yourself")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewValidationError reports a missing or malformed field.
func NewValidationError(field, message string) error {
	return (&CustomError{Err: ErrValidationFailed, Message: message}).
		WithDetails(map[string]interface{}{"field": field})
}

// NewUnauthenticatedError is returned when a workflow call carries no identity.
func NewUnauthenticatedError() error {
	return &CustomError{Err: ErrUnauthenticated, Message: "Authentication required"}
}

// NewCooldownError carries the earliest time the action may be retried.
func NewCooldownError(nextAllowedAt time.Time) error {
	return (&CustomError{
		Err:     ErrCooldownActive,
		Message: "You can rate this mentor again after " + nextAllowedAt.UTC().Format(time.RFC3339),
	}).WithDetails(map[string]interface{}{"nextAllowedAt": nextAllowedAt.UTC()})
}

// NewInvalidTransitionError reports an attempt to move out of a terminal state.
func NewInvalidTransitionError(from, to string) error {
	return (&CustomError{
		Err:     ErrInvalidTransition,
		Message: "Cannot change status from " + from + " to " + to,
	}).WithDetails(map[string]interface{}{"from": from, "to": to})
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// Details extracts the details map of the first CustomError in the chain.
func Details(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}

// Message returns the user facing message of the first CustomError in the chain.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}
