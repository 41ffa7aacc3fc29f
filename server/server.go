package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/jrsteele09/go-classroom-assign/internal/config"
	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"github.com/jrsteele09/go-classroom-assign/sessions"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/workspace"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// CourseServiceFactory builds the resource client for a freshly granted token.
type CourseServiceFactory func(ctx context.Context, token *oauth2.Token) (workspace.CourseService, error)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	signin   *signin.Coordinator
	sessions sessions.Repo
	draft    classroom.Draft
	courses  CourseServiceFactory
	page     *template.Template
	now      func() time.Time
}

type Option func(*Server)

// WithCourseServiceFactory replaces the default Classroom client factory.
func WithCourseServiceFactory(f CourseServiceFactory) Option {
	return func(s *Server) {
		s.courses = f
	}
}

func New(config config.Config, coordinator *signin.Coordinator, sessionRepo sessions.Repo, draft classroom.Draft, opts ...Option) (*Server, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("[Server New] sign-in coordinator is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}

	page, err := ParseTemplate("index.html")
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Server New] failed to parse index template")
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		signin:   coordinator,
		sessions: sessionRepo,
		draft:    draft.Clone(),
		page:     page,
		now:      time.Now,
	}
	s.courses = s.classroomClientFactory
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// StartSweeper removes expired sessions and abandoned sign-in flows until ctx is done.
func (s *Server) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(s.now())
			}
		}
	}()
}

func (s *Server) sweep(now time.Time) {
	expiredSessions, err := s.sessions.DeleteExpired(now)
	if err != nil {
		log.Err(err).Msg("sweeping sessions")
	}
	abandonedFlows, err := s.signin.Sweep(now)
	if err != nil {
		log.Err(err).Msg("sweeping sign-in flows")
	}
	if expiredSessions > 0 || abandonedFlows > 0 {
		log.Debug().Int("sessions", expiredSessions).Int("flows", abandonedFlows).Msg("swept")
	}
}

func (s *Server) classroomClientFactory(ctx context.Context, token *oauth2.Token) (workspace.CourseService, error) {
	return classroom.NewClient(ctx, oauth2.StaticTokenSource(token),
		classroom.WithEndpoint(s.config.GetClassroomEndpoint()),
		classroom.WithTimeout(s.config.GetClassroomTimeout()),
	)
}

func (s *Server) logRoutes() {
	if !config.IsDev(s.config) {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
