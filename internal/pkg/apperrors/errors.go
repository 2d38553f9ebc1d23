package apperrors

import "errors"

// Common errors
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionRevoked     = errors.New("session revoked")

	// ErrSessionAbsent means no usable identity is attached to the request.
	// It is never shown to the user; the gate redirects instead.
	ErrSessionAbsent = errors.New("no active session")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Store errors. Reads and writes against the student table are wrapped with
// one of these so callers can tell a stale list from an aborted write.
var (
	ErrReadFailed  = errors.New("could not load records")
	ErrWriteFailed = errors.New("could not save record")
)

// Student Errors
var (
	ErrStudentNotFound = errors.New("student not found")
)

// NewValidationError creates a validation error carrying per-field messages
func NewValidationError(message string, fields map[string]string) *CustomError {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: details,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
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

// FieldErrors returns the per-field messages of a validation error, if any.
func FieldErrors(err error) map[string]string {
	var ce *CustomError
	if !errors.As(err, &ce) || len(ce.Details) == 0 {
		return nil
	}
	out := make(map[string]string, len(ce.Details))
	for k, v := range ce.Details {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
