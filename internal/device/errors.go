package device

import "errors"

var (
	// ErrNotFound is returned when no device has the requested name
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a name that is taken
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError describes a rejected input value
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
