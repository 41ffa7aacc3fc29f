package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"github.com/jrsteele09/go-classroom-assign/sessions"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/workspace"
	"github.com/rs/zerolog/log"
)

const (
	msgSignInFailed    = "Sign-in failed. Please try again."
	msgSignInCancelled = "Sign-in was cancelled."
	msgSignInExpired   = "Sign-in took too long. Please try again."
)

// SignInHandler starts the identity phase and sends the browser to the provider.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.signin.Begin(r.Context(), localReturnURL(r.URL.Query().Get("return_to")))
		if err != nil {
			log.Err(err).Msg("starting sign-in")
			redirectWithError(w, r, RouteIndex, msgSignInFailed)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// CallbackHandler receives both the identity and the grant callback.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		cb := signin.Callback{
			State:            r.FormValue("state"),
			Code:             r.FormValue("code"),
			Error:            r.FormValue("error"),
			ErrorDescription: r.FormValue("error_description"),
		}

		result, err := s.signin.Complete(r.Context(), cb)
		if err != nil {
			log.Warn().Err(err).Msg("sign-in callback")
			// A callback that matches no pending flow was not started here and leaves the session alone.
			if !errors.Is(err, apperrors.ErrFlowNotFound) && !errors.Is(err, signin.ErrMissingState) {
				s.endSession(w, r)
			}
			redirectWithError(w, r, RouteIndex, signInErrorMessage(err))
			return
		}

		switch result.Phase {
		case signin.PhaseIdentity:
			log.Debug().Str("email", result.Identity.Email).Msg("identity confirmed, requesting grant")
			http.Redirect(w, r, result.RedirectURL, http.StatusFound)
		case signin.PhaseGrant:
			if err := s.onTokenAcquired(w, r, result); err != nil {
				log.Err(err).Msg("starting session")
				s.endSession(w, r)
				redirectWithError(w, r, RouteIndex, msgSignInFailed)
				return
			}
			redirectSuccess(w, r, localReturnURL(result.ReturnURL))
		default:
			s.endSession(w, r)
			redirectWithError(w, r, RouteIndex, msgSignInFailed)
		}
	}
}

// SignOutHandler ends the session and returns to the sign-in view.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(w, r)
		redirectSuccess(w, r, RouteIndex)
	}
}

// onTokenAcquired binds a new session to the grant and loads its courses.
func (s *Server) onTokenAcquired(w http.ResponseWriter, r *http.Request, result signin.Result) error {
	if result.Grant == nil || result.Grant.Token == nil {
		return fmt.Errorf("[Server onTokenAcquired] grant carries no token")
	}

	// The client outlives this request; only the deadline-free values of the request context carry over.
	ctx := context.WithoutCancel(r.Context())
	courses, err := s.courses(ctx, result.Grant.Token)
	if err != nil {
		return apperrors.Wrapf(err, "[Server onTokenAcquired] build course service")
	}

	now := s.now()
	session := &sessions.Session{
		ID:        uuid.NewString(),
		Identity:  result.Grant.Identity,
		Token:     result.Grant.Token,
		Workspace: workspace.New(courses, s.draft),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.GetMaxSessionAge()),
	}
	if err := s.sessions.Upsert(session); err != nil {
		return apperrors.Wrapf(err, "[Server onTokenAcquired] store session")
	}

	if previous := s.currentSession(r); previous != nil {
		_ = s.sessions.Delete(previous.ID)
	}
	s.SetLoginSessionCookie(w, session.ID, r, int(s.config.GetMaxSessionAge().Seconds()))
	log.Info().Str("session_id", session.ID).Str("email", session.Identity.Email).Msg("signed in")

	// A failed load is already reflected in the workspace feedback.
	if _, err := session.Workspace.LoadCourses(r.Context()); err != nil {
		log.Debug().Err(err).Msg("initial course load")
	}
	return nil
}

func signInErrorMessage(err error) string {
	var authErr *signin.AuthError
	if errors.As(err, &authErr) && authErr.Reason == "access_denied" {
		return msgSignInCancelled
	}
	if errors.Is(err, apperrors.ErrFlowExpired) {
		return msgSignInExpired
	}
	return msgSignInFailed
}
