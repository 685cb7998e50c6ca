package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure wraps exactly one of these.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrValidationFailed = errors.New("validation failed")
)

// Authentication errors. Each refines one of the kinds above.
var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("token expired: %w", ErrUnauthenticated)
	ErrTokenInvalid       = fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	ErrAccountDisabled    = fmt.Errorf("account is disabled: %w", ErrPermissionDenied)
)

// Error codes carried on CustomError.Code.
const (
	CodeNotFound        = "RES_001"
	CodeConflict        = "RES_004"
	CodeInvalidState    = "RES_005"
	CodeCapacity        = "RES_006"
	CodeForbidden       = "AUTH_009"
	CodeUnauthenticated = "AUTH_008"
	CodeValidation      = "VAL_001"
)

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
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds a single context value to the error
func (e *CustomError) WithDetail(key string, value interface{}) *CustomError {
	return e.WithDetails(map[string]interface{}{key: value})
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewNotFoundError reports a missing entity of the given kind.
func NewNotFoundError(entity string, id interface{}) *CustomError {
	return (&CustomError{
		Err:     ErrResourceNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Code:    CodeNotFound,
	}).WithDetails(map[string]interface{}{"entity": entity, "id": fmt.Sprint(id)})
}

// NewAuthorizationError reports a role or ownership mismatch.
func NewAuthorizationError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message, Code: CodeForbidden}
}

// NewUnauthenticatedError reports a missing caller identity.
func NewUnauthenticatedError(message string) *CustomError {
	return &CustomError{Err: ErrUnauthenticated, Message: message, Code: CodeUnauthenticated}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message, Code: CodeConflict}
}

// NewStateError reports a lifecycle transition that is not allowed.
func NewStateError(message string) *CustomError {
	return &CustomError{Err: ErrInvalidState, Message: message, Code: CodeInvalidState}
}

// NewCapacityError reports that a bounded resource is full.
func NewCapacityError(message string) *CustomError {
	return &CustomError{Err: ErrCapacityExceeded, Message: message, Code: CodeCapacity}
}

// NewValidationError reports malformed input on the named field.
func NewValidationError(field, message string) *CustomError {
	e := &CustomError{Err: ErrValidationFailed, Message: message, Code: CodeValidation}
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

var domainKinds = []struct {
	err  error
	name string
}{
	{ErrResourceNotFound, "not_found"},
	{ErrPermissionDenied, "authorization"},
	{ErrUnauthenticated, "unauthenticated"},
	{ErrConflict, "conflict"},
	{ErrInvalidState, "state"},
	{ErrCapacityExceeded, "capacity"},
	{ErrValidationFailed, "validation"},
}

// Kind returns a short label for the error kind, "internal" for anything outside
// the domain taxonomy and "ok" for nil.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range domainKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

// IsDomainError reports whether err belongs to the domain taxonomy.
func IsDomainError(err error) bool {
	k := Kind(err)
	return k != "internal" && k != "ok"
}
