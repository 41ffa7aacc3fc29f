package classroom

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken is returned when a client is built before a token exists.
	ErrNoToken = errors.New("no session token")
	// ErrValidation rejects a request before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrTransport matches every rejected or failed remote call.
	ErrTransport = errors.New("classroom call failed")
)

// TransportError reports a list or create call the remote service rejected or never answered.
type TransportError struct {
	Op string
	// StatusCode is the HTTP status the service answered with, zero when no response arrived
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", ErrTransport, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
