package errors

import "fmt"

// ErrorCode represents a tracker error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrMalformedImport ErrorCode = "MALFORMED_IMPORT" // 422
	ErrInternal        ErrorCode = "INTERNAL"         // 500
	ErrUpstreamFailure ErrorCode = "UPSTREAM_FAILURE" // 502
)

// TrackerError represents a structured error with code, status, and details.
type TrackerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TrackerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TrackerError {
	return &TrackerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unresolvable identifier.
func NewNotFound(identifier string) *TrackerError {
	return &TrackerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("stakeholder not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewMalformedImport creates a 422 error for unparseable import content.
// The store is left unchanged when this is returned; no partial import.
func NewMalformedImport(msg string) *TrackerError {
	return &TrackerError{
		Code:    ErrMalformedImport,
		Status:  422,
		Message: msg,
	}
}

// NewUpstreamFailure creates a 502 error for a failed upstream collaborator
// call (AI prediction, capture shim). Scoped to the action that triggered it;
// the entity store is unaffected.
func NewUpstreamFailure(msg string) *TrackerError {
	return &TrackerError{
		Code:    ErrUpstreamFailure,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TrackerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TrackerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TrackerError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TrackerError); ok {
		return tErr.Code == code
	}
	return false
}
