package domain

// basic error kinds shared by the services and the transport layer
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotFound     Error = "not found"
	ErrInvalidInput Error = "invalid input"
	ErrUnavailable  Error = "service unavailable, try again later"
	ErrConflict     Error = "conflict"
	ErrUnauthorized Error = "unauthorized"
)

// ValidationError names the field that failed validation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}
