package classroom_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/jrsteele09/go-classroom-assign/classroom/fakeclassroom"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testToken = "session-token-1"

func testDraft(t *testing.T) classroom.Draft {
	t.Helper()
	d, err := classroom.NewDraft(
		"5-a-Day Sight Reading Practice",
		"Please complete today's sight reading exercise using the link.",
		[]string{"https://anderson506.github.io/sightreading5aday/"},
		"ASSIGNMENT",
		"PUBLISHED",
	)
	require.NoError(t, err)
	return d
}

func newTestClient(t *testing.T, api *fakeclassroom.Server, opts ...classroom.Option) *classroom.Client {
	t.Helper()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testToken, TokenType: "Bearer"})
	opts = append([]classroom.Option{classroom.WithEndpoint(api.URL)}, opts...)
	c, err := classroom.NewClient(context.Background(), ts, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := classroom.NewClient(context.Background(), nil)
	require.ErrorIs(t, err, classroom.ErrNoToken)
}

func TestClient_ListCourses(t *testing.T) {
	api := fakeclassroom.New(t)
	api.SetCourses(classroom.Course{ID: "c1", Name: "Math"})
	c := newTestClient(t, api)

	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Equal(t, []classroom.Course{{ID: "c1", Name: "Math"}}, courses)
	require.Equal(t, []string{"ACTIVE"}, api.StateFilters())
	require.Equal(t, []string{"Bearer " + testToken}, api.AuthHeaders())
}

func TestClient_ListCourses_FollowsPages(t *testing.T) {
	api := fakeclassroom.New(t)
	api.SetCourses(
		classroom.Course{ID: "c1", Name: "Math"},
		classroom.Course{ID: "c2", Name: "Music"},
		classroom.Course{ID: "c3", Name: "Art"},
	)
	api.SetPageSize(2)
	c := newTestClient(t, api)

	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 3)
	require.Equal(t, "c3", courses[2].ID)
	require.Equal(t, 2, api.ListCalls())
}

func TestClient_ListCourses_Empty(t *testing.T) {
	api := fakeclassroom.New(t)
	c := newTestClient(t, api)

	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Empty(t, courses)
}

func TestClient_ListCourses_TransportError(t *testing.T) {
	api := fakeclassroom.New(t)
	api.FailList(http.StatusForbidden)
	c := newTestClient(t, api)

	courses, err := c.ListCourses(context.Background())
	require.Nil(t, courses)
	require.ErrorIs(t, err, classroom.ErrTransport)

	var te *classroom.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusForbidden, te.StatusCode)
	require.Equal(t, "courses.list", te.Op)
}

func TestClient_CreateAssignment(t *testing.T) {
	api := fakeclassroom.New(t)
	c := newTestClient(t, api)

	created, err := c.CreateAssignment(context.Background(), "c1", testDraft(t))
	require.NoError(t, err)
	require.Equal(t, "c1", created.CourseID)
	require.Equal(t, classroom.StatePublished, created.State)
	require.NotEmpty(t, created.ID)

	reqs := api.Created()
	require.Len(t, reqs, 1)
	require.Equal(t, "c1", reqs[0].CourseID)
	require.Equal(t, "5-a-Day Sight Reading Practice", reqs[0].Body.Title)
	require.Equal(t, "ASSIGNMENT", reqs[0].Body.WorkType)
	require.Equal(t, "PUBLISHED", reqs[0].Body.State)
	require.Equal(t, []string{"https://anderson506.github.io/sightreading5aday/"}, reqs[0].Body.MaterialURLs())
}

func TestClient_CreateAssignment_EmptyCourseIDNeverCallsOut(t *testing.T) {
	api := fakeclassroom.New(t)
	c := newTestClient(t, api)

	_, err := c.CreateAssignment(context.Background(), "  ", testDraft(t))
	require.ErrorIs(t, err, classroom.ErrValidation)
	require.Empty(t, api.Created())
	require.Empty(t, api.AuthHeaders())
}

func TestClient_CreateAssignment_InvalidDraftNeverCallsOut(t *testing.T) {
	api := fakeclassroom.New(t)
	c := newTestClient(t, api)

	d := testDraft(t)
	d.WorkType = "ESSAY"
	_, err := c.CreateAssignment(context.Background(), "c1", d)
	require.ErrorIs(t, err, classroom.ErrValidation)
	require.Empty(t, api.Created())
}

func TestClient_CreateAssignment_TransportError(t *testing.T) {
	api := fakeclassroom.New(t)
	api.FailCreate(http.StatusInternalServerError)
	c := newTestClient(t, api)

	_, err := c.CreateAssignment(context.Background(), "c1", testDraft(t))
	require.ErrorIs(t, err, classroom.ErrTransport)
	// No retry
	require.Len(t, api.Created(), 1)
}

func TestClient_CreateAssignment_Timeout(t *testing.T) {
	api := fakeclassroom.New(t)
	release := api.BlockCreate()
	defer release()
	c := newTestClient(t, api, classroom.WithTimeout(50*time.Millisecond))

	_, err := c.CreateAssignment(context.Background(), "c1", testDraft(t))
	require.ErrorIs(t, err, classroom.ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
