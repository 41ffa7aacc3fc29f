// Package fakeclassroom serves the two Classroom API calls the client makes,
// for tests. It records every request it receives.
package fakeclassroom

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/jrsteele09/go-classroom-assign/classroom"
)

// CourseWorkRequest is one received courses.courseWork.create call.
type CourseWorkRequest struct {
	CourseID string
	Body     CourseWorkBody
}

type CourseWorkBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	WorkType    string `json:"workType"`
	State       string `json:"state"`
	Materials   []struct {
		Link struct {
			URL string `json:"url"`
		} `json:"link"`
	} `json:"materials"`
}

// MaterialURLs flattens the link materials of the request.
func (b CourseWorkBody) MaterialURLs() []string {
	urls := make([]string, 0, len(b.Materials))
	for _, m := range b.Materials {
		urls = append(urls, m.Link.URL)
	}
	return urls
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	courses      []classroom.Course
	pageSize     int
	listStatus   int
	createStatus int
	listCalls    int
	created      []CourseWorkRequest
	stateFilters []string
	authHeaders  []string
	block        chan struct{}
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/courses", s.listCourses)
	mux.HandleFunc("POST /v1/courses/{courseId}/courseWork", s.createCourseWork)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Server) SetCourses(courses ...classroom.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = courses
}

// SetPageSize splits the course listing into pages of n courses.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailList makes courses.list answer with the given HTTP status; zero restores success.
func (s *Server) FailList(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = status
}

// FailCreate makes courses.courseWork.create answer with the given HTTP status; zero restores success.
func (s *Server) FailCreate(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createStatus = status
}

// BlockCreate holds every create call until the returned function is called.
func (s *Server) BlockCreate() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block := make(chan struct{})
	s.block = block
	var once sync.Once
	return func() { once.Do(func() { close(block) }) }
}

func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *Server) Created() []CourseWorkRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CourseWorkRequest(nil), s.created...)
}

// StateFilters returns the courseStates filter of every list call.
func (s *Server) StateFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stateFilters...)
}

// AuthHeaders returns the Authorization header of every request.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.listCalls++
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	s.stateFilters = append(s.stateFilters, r.URL.Query().Get("courseStates"))
	status, pageSize := s.listStatus, s.pageSize
	courses := append([]classroom.Course(nil), s.courses...)
	s.mu.Unlock()

	if status != 0 {
		writeAPIError(w, status)
		return
	}

	start, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))
	end := len(courses)
	if pageSize > 0 && start+pageSize < end {
		end = start + pageSize
	}
	if start > end {
		start = end
	}

	type course struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	resp := struct {
		Courses       []course `json:"courses,omitempty"`
		NextPageToken string   `json:"nextPageToken,omitempty"`
	}{}
	for _, c := range courses[start:end] {
		resp.Courses = append(resp.Courses, course{ID: c.ID, Name: c.Name})
	}
	if end < len(courses) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createCourseWork(w http.ResponseWriter, r *http.Request) {
	var body CourseWorkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	courseID := r.PathValue("courseId")
	s.created = append(s.created, CourseWorkRequest{CourseID: courseID, Body: body})
	status, block := s.createStatus, s.block
	id := strconv.Itoa(len(s.created))
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeAPIError(w, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":            "cw-" + id,
		"courseId":      courseID,
		"title":         body.Title,
		"state":         body.State,
		"workType":      body.WorkType,
		"alternateLink": "https://classroom.example.com/c/" + courseID + "/a/cw-" + id,
	})
}

func writeAPIError(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": http.StatusText(status),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
