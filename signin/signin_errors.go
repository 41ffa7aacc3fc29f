package signin

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-classroom-assign/signin/flowrepo"
)

var (
	// ErrAuth matches every sign-in failure; the caller must return to the unauthenticated state.
	ErrAuth = errors.New("sign-in failed")

	ErrMissingState     = errors.New("missing state parameter")
	ErrMissingCode      = errors.New("missing code parameter")
	ErrNoIDToken        = errors.New("no id_token in token response")
	ErrNonceMismatch    = errors.New("nonce mismatch")
	ErrScopesNotGranted = errors.New("requested scopes not granted")
	ErrInvalidToken     = errors.New("grant returned an invalid access token")
	ErrUnknownPhase     = errors.New("unknown sign-in phase")
	ErrMissingIdentity  = errors.New("identity token has no subject")
)

// AuthError reports a failed identity confirmation or grant.
type AuthError struct {
	Phase flowrepo.Phase
	// Reason is the provider error code (e.g. "access_denied") when the provider reported one
	Reason      string
	Description string
	Err         error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("%s (%s phase)", ErrAuth.Error(), e.Phase)
	if e.Reason != "" {
		msg += ": " + e.Reason
		if e.Description != "" {
			msg += " - " + e.Description
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func authErr(phase flowrepo.Phase, err error) *AuthError {
	return &AuthError{Phase: phase, Err: err}
}
