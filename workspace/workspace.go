// Package workspace holds the authenticated user's controls: the course
// selector, the create control and the feedback line.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/rs/zerolog/log"
)

type State string

const (
	StateIdle           State = "idle"
	StateLoadingCourses State = "loading-courses"
	StateReady          State = "ready"
	StateCreating       State = "creating"
)

var (
	// ErrBusy rejects an action while another one is waiting on the remote service.
	ErrBusy = errors.New("another action is in progress")
	// ErrCreateDisabled rejects a create while the control is disabled (no active courses).
	ErrCreateDisabled = errors.New("create is disabled")
)

// CourseService is the remote side of the workspace.
type CourseService interface {
	ListCourses(ctx context.Context) ([]classroom.Course, error)
	CreateAssignment(ctx context.Context, courseID string, d classroom.Draft) (classroom.Assignment, error)
}

// Option is one entry of the course selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// View is a snapshot of everything the controls display.
type View struct {
	State          State
	Courses        []Option
	CreateEnabled  bool
	Feedback       string
	AssignmentLink string
}

type Workspace struct {
	mu      sync.Mutex
	client  CourseService
	draft   classroom.Draft
	state   State
	courses []classroom.Course

	selected       string
	createEnabled  bool
	feedback       string
	assignmentLink string
}

// New binds a workspace to a session's course service. draft is the
// template every created assignment is copied from. Create stays disabled
// until the first successful course load.
func New(client CourseService, draft classroom.Draft) *Workspace {
	return &Workspace{
		client: client,
		draft:  draft.Clone(),
		state:  StateIdle,
	}
}

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// LoadCourses replaces the selector with the user's active courses.
// A failed load keeps the previous courses and state.
func (w *Workspace) LoadCourses(ctx context.Context) (view View, err error) {
	w.mu.Lock()
	if w.busyLocked() {
		defer w.mu.Unlock()
		return w.viewLocked(), ErrBusy
	}
	prev := w.state
	w.state = StateLoadingCourses
	w.feedback = MsgLoadingCourses
	w.mu.Unlock()

	var (
		courses  []classroom.Course
		returned bool
	)
	defer func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !returned || err != nil {
			w.state = prev
			w.feedback = MsgLoadFailed
		}
		view = w.viewLocked()
	}()

	courses, err = w.client.ListCourses(ctx)
	returned = true
	if err != nil {
		log.Warn().Err(err).Msg("listing courses")
		return View{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.courses = courses
	w.state = StateReady
	if len(courses) == 0 {
		w.selected = ""
		w.createEnabled = false
		w.feedback = MsgNoActiveCourses
		return View{}, nil
	}

	if !w.hasCourseLocked(w.selected) {
		w.selected = courses[0].ID
	}
	w.createEnabled = true
	w.feedback = ""
	log.Debug().Int("courses", len(courses)).Msg("courses loaded")
	return View{}, nil
}

// CreateAssignment creates the assignment in courseID. The create control is
// disabled for the duration of the call and enabled again however it ends.
func (w *Workspace) CreateAssignment(ctx context.Context, courseID string) (view View, err error) {
	draft, prev, err := w.startCreate(courseID)
	if err != nil {
		return w.View(), err
	}

	var (
		created  classroom.Assignment
		returned bool
	)
	defer func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.createEnabled = true
		w.state = prev
		switch {
		case returned && err == nil:
			w.feedback = MsgCreated
			w.assignmentLink = created.AlternateLink
		default:
			w.feedback = MsgCreateFailed
		}
		view = w.viewLocked()
	}()

	created, err = w.client.CreateAssignment(ctx, courseID, draft)
	returned = true
	if err != nil {
		log.Warn().Err(err).Str("course_id", courseID).Msg("creating assignment")
		return View{}, err
	}
	log.Info().Str("course_id", courseID).Str("course_work_id", created.ID).Msg("assignment created")
	return View{}, nil
}

func (w *Workspace) startCreate(courseID string) (classroom.Draft, State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busyLocked() {
		return classroom.Draft{}, "", ErrBusy
	}
	if courseID == "" {
		w.feedback = MsgSelectCourse
		return classroom.Draft{}, "", fmt.Errorf("%w: no course selected", classroom.ErrValidation)
	}
	if !w.createEnabled {
		return classroom.Draft{}, "", ErrCreateDisabled
	}

	prev := w.state
	w.state = StateCreating
	w.createEnabled = false
	w.feedback = MsgCreating
	w.assignmentLink = ""
	w.selected = courseID
	return w.draft.Clone(), prev, nil
}

func (w *Workspace) busyLocked() bool {
	return w.state == StateLoadingCourses || w.state == StateCreating
}

func (w *Workspace) hasCourseLocked(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range w.courses {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (w *Workspace) viewLocked() View {
	options := make([]Option, 0, len(w.courses))
	for _, c := range w.courses {
		options = append(options, Option{Value: c.ID, Label: c.Name, Selected: c.ID == w.selected})
	}
	return View{
		State:          w.state,
		Courses:        options,
		CreateEnabled:  w.createEnabled,
		Feedback:       w.feedback,
		AssignmentLink: w.assignmentLink,
	}
}
