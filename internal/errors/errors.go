package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across packages
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Sign-in flow errors
	ErrFlowNotFound = errors.New("sign-in flow not found")
	ErrFlowExpired  = errors.New("sign-in flow expired")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
