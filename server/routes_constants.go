package server

// Route path constants
const (
	RouteIndex    = "/"
	RouteHealth   = "/healthz"
	RouteSignIn   = "/signin"
	RouteSignOut  = "/signout"
	RouteCallback = "/callback"

	// Controls (form posts, redirect back to the index)
	RouteReloadCourses = "/courses/reload"
	RouteAssignments   = "/assignments"

	// JSON API
	RouteAPIWorkspace     = "/api/workspace"
	RouteAPIReloadCourses = "/api/courses/reload"
	RouteAPIAssignments   = "/api/assignments"
)
