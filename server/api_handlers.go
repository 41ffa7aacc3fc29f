package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/jrsteele09/go-classroom-assign/workspace"
	"github.com/rs/zerolog/log"
)

type courseOptionResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type workspaceResponse struct {
	State          string                 `json:"state"`
	Email          string                 `json:"email"`
	Courses        []courseOptionResponse `json:"courses"`
	CreateEnabled  bool                   `json:"createEnabled"`
	Feedback       string                 `json:"feedback"`
	AssignmentLink string                 `json:"assignmentLink,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

type createAssignmentRequest struct {
	CourseID string `json:"courseId"`
}

func (s *Server) APIWorkspaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, toWorkspaceResponse(session.Identity.Email, session.Workspace.View(), nil))
	}
}

func (s *Server) APIReloadCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		view, err := session.Workspace.LoadCourses(r.Context())
		writeJSON(w, statusFor(err), toWorkspaceResponse(session.Identity.Email, view, err))
	}
}

func (s *Server) APICreateAssignmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		var req createAssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "body must be {\"courseId\": \"...\"}")
			return
		}

		view, err := session.Workspace.CreateAssignment(r.Context(), req.CourseID)
		writeJSON(w, statusFor(err), toWorkspaceResponse(session.Identity.Email, view, err))
	}
}

func toWorkspaceResponse(email string, view workspace.View, err error) workspaceResponse {
	courses := make([]courseOptionResponse, 0, len(view.Courses))
	for _, c := range view.Courses {
		courses = append(courses, courseOptionResponse{ID: c.Value, Name: c.Label, Selected: c.Selected})
	}
	resp := workspaceResponse{
		State:          string(view.State),
		Email:          email,
		Courses:        courses,
		CreateEnabled:  view.CreateEnabled,
		Feedback:       view.Feedback,
		AssignmentLink: view.AssignmentLink,
	}
	if err != nil {
		resp.Error = errorCodeFor(err)
	}
	return resp
}

// Error codes returned to API callers; details stay in the server log.
const (
	errCodeValidation     = "validation"
	errCodeBusy           = "busy"
	errCodeCreateDisabled = "create_disabled"
	errCodeTransport      = "transport"
	errCodeInternal       = "internal"
)

func errorCodeFor(err error) string {
	switch {
	case errors.Is(err, classroom.ErrValidation):
		return errCodeValidation
	case errors.Is(err, workspace.ErrBusy):
		return errCodeBusy
	case errors.Is(err, workspace.ErrCreateDisabled):
		return errCodeCreateDisabled
	case errors.Is(err, classroom.ErrTransport):
		return errCodeTransport
	default:
		return errCodeInternal
	}
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch errorCodeFor(err) {
	case errCodeValidation:
		return http.StatusBadRequest
	case errCodeBusy, errCodeCreateDisabled:
		return http.StatusConflict
	case errCodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("writing json response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": description})
}
