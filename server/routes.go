package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// SIGN-IN
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	s.RegisterRouteHandler("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))

	// Controls (require an authenticated session)
	s.RegisterRouteHandler("POST "+RouteReloadCourses, ChainMiddleware(s.ReloadCoursesHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteAssignments, ChainMiddleware(s.CreateAssignmentHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPIWorkspace, ChainMiddleware(s.APIWorkspaceHandler(), s.APIMiddleware(s.RequireAPISession())...))
	s.RegisterRouteHandler("POST "+RouteAPIReloadCourses, ChainMiddleware(s.APIReloadCoursesHandler(), s.APIMiddleware(s.RequireAPISession())...))
	s.RegisterRouteHandler("POST "+RouteAPIAssignments, ChainMiddleware(s.APICreateAssignmentHandler(), s.APIMiddleware(s.RequireAPISession())...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.APIMiddleware()...))
}
