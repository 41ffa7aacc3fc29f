package signin_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/signin/fakeprovider"
	"github.com/jrsteele09/go-classroom-assign/signin/flowrepo"
	"github.com/stretchr/testify/require"
)

const (
	testClientID    = "client-1.apps.googleusercontent.com"
	testRedirectURL = "http://localhost:8080/callback"
	scopeCourses    = "https://www.googleapis.com/auth/classroom.courses.readonly"
	scopeCoursework = "https://www.googleapis.com/auth/classroom.coursework.me"
)

var testIdentity = signin.Identity{
	Subject: "user-1",
	Email:   "teacher@example.com",
	Name:    "Ada Teacher",
}

type testFixture struct {
	provider    *fakeprovider.Provider
	flows       *flowrepo.InMemoryRepo
	coordinator *signin.Coordinator
}

func setupTestFixture(t *testing.T, timeout time.Duration) *testFixture {
	t.Helper()

	provider := fakeprovider.New(t, testClientID)
	flows := flowrepo.NewInMemoryRepo()
	c, err := signin.NewCoordinator(provider.SigninProvider(), signin.Options{
		ClientID:    testClientID,
		RedirectURL: testRedirectURL,
		GrantScopes: []string{scopeCourses, scopeCoursework},
		FlowTimeout: timeout,
	}, flows)
	require.NoError(t, err)

	return &testFixture{provider: provider, flows: flows, coordinator: c}
}

// confirmIdentity runs the identity phase and returns the grant request URL.
func (f *testFixture) confirmIdentity(t *testing.T) signin.Result {
	t.Helper()

	authURL, err := f.coordinator.Begin(context.Background(), "/")
	require.NoError(t, err)

	res, err := f.coordinator.Complete(context.Background(), f.provider.Authorize(t, authURL, testIdentity))
	require.NoError(t, err)
	require.Equal(t, signin.PhaseIdentity, res.Phase)
	return res
}

func TestNewCoordinator_Validation(t *testing.T) {
	provider := fakeprovider.New(t, testClientID)
	flows := flowrepo.NewInMemoryRepo()
	valid := signin.Options{ClientID: testClientID, RedirectURL: testRedirectURL, GrantScopes: []string{scopeCourses}}

	t.Run("missing client id", func(t *testing.T) {
		opts := valid
		opts.ClientID = ""
		_, err := signin.NewCoordinator(provider.SigninProvider(), opts, flows)
		require.Error(t, err)
	})

	t.Run("missing grant scopes", func(t *testing.T) {
		opts := valid
		opts.GrantScopes = nil
		_, err := signin.NewCoordinator(provider.SigninProvider(), opts, flows)
		require.Error(t, err)
	})

	t.Run("missing verifier", func(t *testing.T) {
		_, err := signin.NewCoordinator(signin.Provider{}, valid, flows)
		require.Error(t, err)
	})

	t.Run("missing flows", func(t *testing.T) {
		_, err := signin.NewCoordinator(provider.SigninProvider(), valid, nil)
		require.Error(t, err)
	})
}

func TestCoordinator_Begin(t *testing.T) {
	f := setupTestFixture(t, time.Minute)

	authURL, err := f.coordinator.Begin(context.Background(), "/return")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "openid email profile", q.Get("scope"))
	require.Equal(t, testRedirectURL, q.Get("redirect_uri"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("nonce"))

	flow, err := f.flows.Get(q.Get("state"))
	require.NoError(t, err)
	require.Equal(t, flowrepo.PhaseIdentity, flow.Phase)
	require.Equal(t, "/return", flow.ReturnURL)
}

func TestCoordinator_TwoPhaseSignIn(t *testing.T) {
	f := setupTestFixture(t, time.Minute)

	res := f.confirmIdentity(t)
	require.Equal(t, testIdentity, res.Identity)
	require.Nil(t, res.Grant)

	grantURL, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	q := grantURL.Query()
	require.Equal(t, scopeCourses+" "+scopeCoursework, q.Get("scope"))
	require.Equal(t, testIdentity.Email, q.Get("login_hint"))
	require.Equal(t, "true", q.Get("include_granted_scopes"))

	res, err = f.coordinator.Complete(context.Background(), f.provider.Authorize(t, res.RedirectURL, testIdentity))
	require.NoError(t, err)
	require.Equal(t, signin.PhaseGrant, res.Phase)
	require.NotNil(t, res.Grant)
	require.Equal(t, fakeprovider.AccessToken, res.Grant.Token.AccessToken)
	require.Equal(t, testIdentity, res.Grant.Identity)
	require.Equal(t, "/", res.ReturnURL)
}

func TestCoordinator_Complete_Failures(t *testing.T) {
	t.Run("missing state", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		_, err := f.coordinator.Complete(context.Background(), signin.Callback{Code: "x"})
		require.ErrorIs(t, err, signin.ErrAuth)
		require.ErrorIs(t, err, signin.ErrMissingState)
	})

	t.Run("unknown state", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		_, err := f.coordinator.Complete(context.Background(), signin.Callback{State: "nope", Code: "x"})
		require.ErrorIs(t, err, signin.ErrAuth)
		require.ErrorIs(t, err, apperrors.ErrFlowNotFound)
	})

	t.Run("provider denied grant", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		res := f.confirmIdentity(t)
		cb := f.provider.Authorize(t, res.RedirectURL, testIdentity)
		cb.Code = ""
		cb.Error = "access_denied"
		cb.ErrorDescription = "user said no"

		_, err := f.coordinator.Complete(context.Background(), cb)
		require.ErrorIs(t, err, signin.ErrAuth)

		var authErr *signin.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, signin.PhaseGrant, authErr.Phase)
		require.Equal(t, "access_denied", authErr.Reason)
		require.Contains(t, err.Error(), "user said no")
	})

	t.Run("state is single use", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		authURL, err := f.coordinator.Begin(context.Background(), "/")
		require.NoError(t, err)
		cb := f.provider.Authorize(t, authURL, testIdentity)

		_, err = f.coordinator.Complete(context.Background(), cb)
		require.NoError(t, err)
		_, err = f.coordinator.Complete(context.Background(), cb)
		require.ErrorIs(t, err, apperrors.ErrFlowNotFound)
	})

	t.Run("missing code", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		authURL, err := f.coordinator.Begin(context.Background(), "/")
		require.NoError(t, err)
		cb := f.provider.Authorize(t, authURL, testIdentity)
		cb.Code = ""

		_, err = f.coordinator.Complete(context.Background(), cb)
		require.ErrorIs(t, err, signin.ErrMissingCode)
	})

	t.Run("exchange rejected", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		res := f.confirmIdentity(t)
		f.provider.SetFailExchange(true)

		_, err := f.coordinator.Complete(context.Background(), f.provider.Authorize(t, res.RedirectURL, testIdentity))
		require.ErrorIs(t, err, signin.ErrAuth)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		f.provider.SetNonceOverride("someone-elses-nonce")
		authURL, err := f.coordinator.Begin(context.Background(), "/")
		require.NoError(t, err)

		_, err = f.coordinator.Complete(context.Background(), f.provider.Authorize(t, authURL, testIdentity))
		require.ErrorIs(t, err, signin.ErrNonceMismatch)
	})

	t.Run("scopes partially granted", func(t *testing.T) {
		f := setupTestFixture(t, time.Minute)
		res := f.confirmIdentity(t)
		f.provider.SetGrantedScope(scopeCourses)

		_, err := f.coordinator.Complete(context.Background(), f.provider.Authorize(t, res.RedirectURL, testIdentity))
		require.ErrorIs(t, err, signin.ErrScopesNotGranted)
		require.Contains(t, err.Error(), scopeCoursework)
	})

	t.Run("abandoned flow expires", func(t *testing.T) {
		f := setupTestFixture(t, time.Nanosecond)
		authURL, err := f.coordinator.Begin(context.Background(), "/")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		_, err = f.coordinator.Complete(context.Background(), f.provider.Authorize(t, authURL, testIdentity))
		require.ErrorIs(t, err, signin.ErrAuth)
		require.ErrorIs(t, err, apperrors.ErrFlowExpired)
	})
}

func TestCoordinator_Sweep(t *testing.T) {
	f := setupTestFixture(t, time.Minute)

	_, err := f.coordinator.Begin(context.Background(), "/")
	require.NoError(t, err)

	removed, err := f.coordinator.Sweep(time.Now())
	require.NoError(t, err)
	require.Zero(t, removed)

	removed, err = f.coordinator.Sweep(time.Now().Add(2 * time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}
