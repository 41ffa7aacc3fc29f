package sessions_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"github.com/jrsteele09/go-classroom-assign/sessions"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newSession(id string, expiresAt, tokenExpiry time.Time) *sessions.Session {
	return &sessions.Session{
		ID:        id,
		Identity:  signin.Identity{Subject: "user-1", Email: "teacher@example.com"},
		Token:     &oauth2.Token{AccessToken: "tok", Expiry: tokenExpiry},
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestInMemoryRepo_UpsertGetDelete(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	s := newSession("s1", time.Now().Add(time.Hour), time.Now().Add(time.Hour))

	require.NoError(t, repo.Upsert(s))

	got, err := repo.Get("s1")
	require.NoError(t, err)
	require.Same(t, s, got)

	require.NoError(t, repo.Delete("s1"))
	_, err = repo.Get("s1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestInMemoryRepo_Validation(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	require.Error(t, repo.Upsert(nil))
	require.Error(t, repo.Upsert(&sessions.Session{}))
	_, err := repo.Get("")
	require.Error(t, err)
	require.Error(t, repo.Delete(""))
}

func TestInMemoryRepo_GetExpired(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	t.Run("session expired", func(t *testing.T) {
		require.NoError(t, repo.Upsert(newSession("old", time.Now().Add(-time.Second), time.Now().Add(time.Hour))))
		_, err := repo.Get("old")
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		_, err = repo.Get("old")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("token expired", func(t *testing.T) {
		require.NoError(t, repo.Upsert(newSession("stale-token", time.Now().Add(time.Hour), time.Now().Add(-time.Second))))
		_, err := repo.Get("stale-token")
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})
}

func TestInMemoryRepo_DeleteExpired(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	now := time.Now()

	require.NoError(t, repo.Upsert(newSession("live", now.Add(time.Hour), now.Add(time.Hour))))
	require.NoError(t, repo.Upsert(newSession("dead", now.Add(-time.Minute), now.Add(time.Hour))))

	removed, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = repo.Get("live")
	require.NoError(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	require.False(t, (&sessions.Session{}).Expired(now))
	require.True(t, newSession("a", now, time.Time{}).Expired(now))
	require.False(t, newSession("b", now.Add(time.Minute), time.Time{}).Expired(now))
}
