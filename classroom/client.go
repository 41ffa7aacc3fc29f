// Package classroom is the resource client for the Google Classroom API.
// A client is bound to one session token for its whole lifetime.
package classroom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	classroomapi "google.golang.org/api/classroom/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const courseStateActive = "ACTIVE"

var tracer = otel.Tracer("github.com/jrsteele09/go-classroom-assign/classroom")

type clientOptions struct {
	endpoint  string
	timeout   time.Duration
	transport http.RoundTripper
}

type Option func(*clientOptions)

// WithEndpoint points the client at another Classroom API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithTransport sets the base transport beneath the token-attaching one.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

type Client struct {
	svc     *classroomapi.Service
	timeout time.Duration
}

// NewClient binds a Classroom client to the session's token source.
// Every request carries the token; there is no client without one.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if ts == nil {
		return nil, ErrNoToken
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{Transport: &oauth2.Transport{Source: ts, Base: base}}

	apiOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if o.endpoint != "" {
		endpoint := o.endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		apiOpts = append(apiOpts, option.WithEndpoint(endpoint))
	}

	svc, err := classroomapi.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[classroom NewClient] failed to create service")
	}
	return &Client{svc: svc, timeout: o.timeout}, nil
}

// ListCourses returns every active course, following all result pages.
// On failure nothing is returned.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	ctx, span := tracer.Start(ctx, "classroom.ListCourses")
	defer span.End()

	var courses []Course
	err := c.svc.Courses.List().
		CourseStates(courseStateActive).
		Pages(ctx, func(resp *classroomapi.ListCoursesResponse) error {
			for _, course := range resp.Courses {
				courses = append(courses, Course{ID: course.Id, Name: course.Name})
			}
			return nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "courses.list failed")
		return nil, transportError("courses.list", err)
	}

	span.SetAttributes(attribute.Int("classroom.courses", len(courses)))
	return courses, nil
}

// CreateAssignment creates the draft as course work in courseID. It is never retried.
func (c *Client) CreateAssignment(ctx context.Context, courseID string, d Draft) (Assignment, error) {
	if strings.TrimSpace(courseID) == "" {
		return Assignment{}, fmt.Errorf("%w: course id is required", ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return Assignment{}, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	ctx, span := tracer.Start(ctx, "classroom.CreateAssignment")
	defer span.End()
	span.SetAttributes(attribute.String("classroom.course_id", courseID))

	created, err := c.svc.Courses.CourseWork.Create(courseID, toCourseWork(d)).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "courses.courseWork.create failed")
		return Assignment{}, transportError("courses.courseWork.create", err)
	}

	return Assignment{
		ID:            created.Id,
		CourseID:      created.CourseId,
		Title:         created.Title,
		State:         PublicationState(created.State),
		AlternateLink: created.AlternateLink,
	}, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func toCourseWork(d Draft) *classroomapi.CourseWork {
	cw := &classroomapi.CourseWork{
		Title:       d.Title,
		Description: d.Description,
		WorkType:    string(d.WorkType),
		State:       string(d.State),
	}
	for _, m := range d.Materials {
		cw.Materials = append(cw.Materials, &classroomapi.Material{
			Link: &classroomapi.Link{Url: m.URL},
		})
	}
	return cw
}

func transportError(op string, err error) *TransportError {
	te := &TransportError{Op: op, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.Code
	}
	return te
}
