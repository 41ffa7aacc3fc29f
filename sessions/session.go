package sessions

import (
	"time"

	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/workspace"
	"golang.org/x/oauth2"
)

// Session is the context of one authenticated user, bound to their grant.
// It lives only in memory and ends on sign-out, expiry or token expiry.
type Session struct {
	ID        string
	Identity  signin.Identity
	Token     *oauth2.Token
	Workspace *workspace.Workspace

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session or its access token has run out at now.
func (s *Session) Expired(now time.Time) bool {
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return true
	}
	return s.Token != nil && !s.Token.Expiry.IsZero() && !now.Before(s.Token.Expiry)
}

type Repo interface {
	Upsert(session *Session) error
	Get(sessionID string) (*Session, error)
	Delete(sessionID string) error
	// DeleteExpired removes sessions expired at now and returns how many were removed
	DeleteExpired(now time.Time) (int, error)
}
