package astro

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists for a date
var ErrNotFound = errors.New("astronomical record not found")

// TransportError means the provider could not be reached or answered with a
// non-2xx status.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the provider answered but the payload was
// unusable.
type MalformedResponseError struct {
	Provider string
	Reason   string
	Payload  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: Malformed response, %s", e.Provider, e.Reason)
}

// ValidationError means a record or raw result is missing required data
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
