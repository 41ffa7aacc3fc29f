package server

import (
	"bytes"
	"net/http"

	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/workspace"
	"github.com/rs/zerolog/log"
)

// PageData is everything the index template renders.
type PageData struct {
	AppName         string
	SignInVisible   bool
	ControlsVisible bool
	Error           string
	Identity        signin.Identity
	View            workspace.View
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// IndexHandler renders the sign-in view, or the controls once a session exists.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
		}

		if session := s.currentSession(r); session != nil {
			data.ControlsVisible = true
			data.Identity = session.Identity
			data.View = session.Workspace.View()
		} else {
			data.SignInVisible = true
		}

		s.renderPage(w, data)
	}
}

// ReloadCoursesHandler reloads the selector and returns to the index.
func (s *Server) ReloadCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if _, err := session.Workspace.LoadCourses(r.Context()); err != nil {
			log.Debug().Err(err).Str("session_id", session.ID).Msg("reload courses")
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// CreateAssignmentHandler creates the assignment in the posted course_id.
// The outcome is shown through the workspace feedback.
func (s *Server) CreateAssignmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if _, err := session.Workspace.CreateAssignment(r.Context(), r.FormValue("course_id")); err != nil {
			log.Debug().Err(err).Str("session_id", session.ID).Msg("create assignment")
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, data PageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Err(err).Msg("rendering index")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
