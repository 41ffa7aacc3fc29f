// Package signin drives the two-phase sign-in: the identity provider first
// confirms who the user is, then the user grants the scoped Classroom access.
package signin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
	"github.com/jrsteele09/go-classroom-assign/signin/flowrepo"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

type Phase = flowrepo.Phase

const (
	PhaseIdentity = flowrepo.PhaseIdentity
	PhaseGrant    = flowrepo.PhaseGrant
)

var tracer = otel.Tracer("github.com/jrsteele09/go-classroom-assign/signin")

// Identity is the user confirmed by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Grant is the outcome of a completed sign-in.
type Grant struct {
	Identity Identity
	Token    *oauth2.Token
}

// Callback carries the parameters the provider sends to the redirect URI.
type Callback struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// Result is the typed outcome of one callback.
//
// After PhaseIdentity the caller must send the user to RedirectURL to request
// the grant. After PhaseGrant, Grant holds the access token.
type Result struct {
	Phase       Phase
	Identity    Identity
	RedirectURL string
	Grant       *Grant
	ReturnURL   string
}

// Provider is the identity provider the coordinator talks to.
type Provider struct {
	Endpoint oauth2.Endpoint
	Verifier *oidc.IDTokenVerifier
}

// DiscoverProvider resolves the provider endpoints and signing keys from the issuer's discovery document.
func DiscoverProvider(ctx context.Context, issuer, clientID string) (Provider, error) {
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Provider{}, apperrors.Wrapf(err, "[signin DiscoverProvider] failed to create OIDC provider")
	}
	return Provider{
		Endpoint: p.Endpoint(),
		Verifier: p.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

type Options struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	IdentityScopes []string
	GrantScopes    []string
	// FlowTimeout is how long a pending phase waits for its callback before it is abandoned
	FlowTimeout time.Duration
}

type Coordinator struct {
	identity *oauth2.Config
	grant    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	flows    flowrepo.Repo
	timeout  time.Duration
	now      func() time.Time
}

func NewCoordinator(provider Provider, opts Options, flows flowrepo.Repo) (*Coordinator, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("[signin NewCoordinator] client id is required")
	}
	if opts.RedirectURL == "" {
		return nil, fmt.Errorf("[signin NewCoordinator] redirect url is required")
	}
	if provider.Verifier == nil {
		return nil, fmt.Errorf("[signin NewCoordinator] id token verifier is required")
	}
	if flows == nil {
		return nil, fmt.Errorf("[signin NewCoordinator] flow repo is required")
	}
	if len(opts.GrantScopes) == 0 {
		return nil, fmt.Errorf("[signin NewCoordinator] grant scopes are required")
	}

	identityScopes := opts.IdentityScopes
	if len(identityScopes) == 0 {
		identityScopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &Coordinator{
		identity: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     provider.Endpoint,
			RedirectURL:  opts.RedirectURL,
			Scopes:       identityScopes,
		},
		grant: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     provider.Endpoint,
			RedirectURL:  opts.RedirectURL,
			Scopes:       opts.GrantScopes,
		},
		verifier: provider.Verifier,
		flows:    flows,
		timeout:  opts.FlowTimeout,
		now:      time.Now,
	}, nil
}

// Begin starts the identity phase and returns the provider-hosted sign-in URL.
func (c *Coordinator) Begin(ctx context.Context, returnURL string) (string, error) {
	_, span := tracer.Start(ctx, "signin.Begin")
	defer span.End()

	state, err := randomString(32)
	if err != nil {
		return "", apperrors.Wrapf(err, "[signin Begin] state")
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", apperrors.Wrapf(err, "[signin Begin] nonce")
	}
	verifier := oauth2.GenerateVerifier()

	if err := c.flows.Upsert(state, &flowrepo.AuthFlowState{
		Phase:        PhaseIdentity,
		CodeVerifier: verifier,
		Nonce:        nonce,
		ReturnURL:    returnURL,
		CreatedAt:    c.now(),
	}); err != nil {
		return "", apperrors.Wrapf(err, "[signin Begin] failed to store flow")
	}

	return c.identity.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	), nil
}

// Complete handles a provider callback for either phase.
// Every failure is an *AuthError; no step is retried.
func (c *Coordinator) Complete(ctx context.Context, cb Callback) (Result, error) {
	ctx, span := tracer.Start(ctx, "signin.Complete")
	defer span.End()

	if cb.State == "" {
		return Result{}, authErr(0, ErrMissingState)
	}

	// Flows are single use
	flow, err := c.flows.Take(cb.State)
	if err != nil {
		return Result{}, authErr(0, err)
	}
	span.SetAttributes(attribute.String("signin.phase", flow.Phase.String()))

	if c.timeout > 0 && c.now().Sub(flow.CreatedAt) > c.timeout {
		return Result{}, authErr(flow.Phase, apperrors.ErrFlowExpired)
	}
	if cb.Error != "" {
		return Result{}, &AuthError{Phase: flow.Phase, Reason: cb.Error, Description: cb.ErrorDescription}
	}
	if cb.Code == "" {
		return Result{}, authErr(flow.Phase, ErrMissingCode)
	}

	switch flow.Phase {
	case PhaseIdentity:
		identity, err := c.confirmIdentity(ctx, cb.Code, flow)
		if err != nil {
			return Result{}, authErr(PhaseIdentity, err)
		}
		return c.onIdentityConfirmed(identity, flow.ReturnURL)
	case PhaseGrant:
		token, err := c.acquireToken(ctx, cb.Code, flow)
		if err != nil {
			return Result{}, authErr(PhaseGrant, err)
		}
		return c.onTokenAcquired(flow, token), nil
	default:
		return Result{}, authErr(flow.Phase, ErrUnknownPhase)
	}
}

// Sweep removes pending flows that were abandoned before their callback arrived.
func (c *Coordinator) Sweep(now time.Time) (int, error) {
	if c.timeout <= 0 {
		return 0, nil
	}
	removed, err := c.flows.DeleteExpired(now.Add(-c.timeout))
	if err != nil {
		return 0, apperrors.Wrapf(err, "[signin Sweep]")
	}
	return removed, nil
}

func (c *Coordinator) confirmIdentity(ctx context.Context, code string, flow *flowrepo.AuthFlowState) (Identity, error) {
	token, err := c.identity.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return Identity{}, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Identity{}, ErrNoIDToken
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("id token verification: %w", err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("claims: %w", err)
	}
	if claims.Nonce != flow.Nonce {
		return Identity{}, ErrNonceMismatch
	}
	if claims.Sub == "" {
		return Identity{}, ErrMissingIdentity
	}

	return Identity{Subject: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}

// onIdentityConfirmed immediately requests the scoped grant for the confirmed user.
func (c *Coordinator) onIdentityConfirmed(identity Identity, returnURL string) (Result, error) {
	state, err := randomString(32)
	if err != nil {
		return Result{}, authErr(PhaseIdentity, err)
	}
	verifier := oauth2.GenerateVerifier()

	if err := c.flows.Upsert(state, &flowrepo.AuthFlowState{
		Phase:        PhaseGrant,
		CodeVerifier: verifier,
		ReturnURL:    returnURL,
		CreatedAt:    c.now(),
		Subject:      identity.Subject,
		Email:        identity.Email,
		Name:         identity.Name,
	}); err != nil {
		return Result{}, authErr(PhaseIdentity, err)
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if identity.Email != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", identity.Email))
	}

	log.Debug().Str("subject", identity.Subject).Msg("identity confirmed, requesting grant")
	return Result{
		Phase:       PhaseIdentity,
		Identity:    identity,
		RedirectURL: c.grant.AuthCodeURL(state, opts...),
		ReturnURL:   returnURL,
	}, nil
}

func (c *Coordinator) acquireToken(ctx context.Context, code string, flow *flowrepo.AuthFlowState) (*oauth2.Token, error) {
	token, err := c.grant.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	if !token.Valid() {
		return nil, ErrInvalidToken
	}
	if missing := missingScopes(token, c.grant.Scopes); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrScopesNotGranted, strings.Join(missing, " "))
	}
	return token, nil
}

func (c *Coordinator) onTokenAcquired(flow *flowrepo.AuthFlowState, token *oauth2.Token) Result {
	identity := Identity{Subject: flow.Subject, Email: flow.Email, Name: flow.Name}
	log.Debug().Str("subject", identity.Subject).Time("expiry", token.Expiry).Msg("grant acquired")
	return Result{
		Phase:     PhaseGrant,
		Identity:  identity,
		Grant:     &Grant{Identity: identity, Token: token},
		ReturnURL: flow.ReturnURL,
	}
}

// missingScopes lists the requested scopes absent from the token's granted scope.
// Providers that do not echo the scope are trusted to have granted the request.
func missingScopes(token *oauth2.Token, requested []string) []string {
	granted, _ := token.Extra("scope").(string)
	if granted == "" {
		return nil
	}
	have := make(map[string]struct{})
	for _, s := range strings.Fields(granted) {
		have[s] = struct{}{}
	}
	var missing []string
	for _, s := range requested {
		if _, ok := have[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// randomString creates a random base64url string
func randomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
