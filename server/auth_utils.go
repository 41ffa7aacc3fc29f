package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-classroom-assign/sessions"
)

const (
	// loggedInSessionID is the name of the cookie carrying the authenticated session
	loggedInSessionID = "loggedInSessionId"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the authenticated *sessions.Session
	ContextKeySession ContextKey = "session"
)

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     loggedInSessionID,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearLoginSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetLoginSessionCookie(w, "", r, -1)
}

// currentSession returns the live session named by the request cookie, or nil.
func (s *Server) currentSession(r *http.Request) *sessions.Session {
	cookie, err := r.Cookie(loggedInSessionID)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := s.sessions.Get(cookie.Value)
	if err != nil {
		return nil
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(session.ID)
		return nil
	}
	return session
}

// endSession drops the session named by the request cookie and expires the cookie.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(loggedInSessionID); err == nil && cookie.Value != "" {
		_ = s.sessions.Delete(cookie.Value)
	}
	s.ClearLoginSessionCookie(w, r)
}

func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

// RequireSession is middleware for HTML form routes; without a session it redirects to the index
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := s.currentSession(r)
			if session == nil {
				s.ClearLoginSessionCookie(w, r)
				redirectWithError(w, r, RouteIndex, "Please sign in.")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

// RequireAPISession is RequireSession for JSON routes; without a session it answers 401
func (s *Server) RequireAPISession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := s.currentSession(r)
			if session == nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "no active session")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}

// localReturnURL keeps only same-site paths so the callback cannot be turned into an open redirect.
func localReturnURL(returnURL string) string {
	if returnURL == "" || !strings.HasPrefix(returnURL, "/") || strings.HasPrefix(returnURL, "//") || strings.HasPrefix(returnURL, "/\\") {
		return RouteIndex
	}
	u, err := url.Parse(returnURL)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return RouteIndex
	}
	return returnURL
}
