// Package fakeprovider is an in-process OpenID Connect provider for tests.
// It issues authorization codes on demand, enforces PKCE at its token
// endpoint and signs ID tokens with a throwaway RSA key.
package fakeprovider

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const AccessToken = "fake-access-token"

type issuedCode struct {
	challenge string
	nonce     string
	scope     string
	identity  signin.Identity
}

type Provider struct {
	Server   *httptest.Server
	ClientID string

	key   *rsa.PrivateKey
	mu    sync.Mutex
	codes map[string]issuedCode
	count int

	grantedScope  string
	failExchange  bool
	nonceOverride string
}

func New(t testing.TB, clientID string) *Provider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &Provider{
		ClientID: clientID,
		key:      key,
		codes:    make(map[string]issuedCode),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", p.tokenHandler)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// SetGrantedScope overrides the scope echoed for grant-phase codes.
func (p *Provider) SetGrantedScope(scope string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantedScope = scope
}

// SetFailExchange makes the token endpoint reject every code.
func (p *Provider) SetFailExchange(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failExchange = fail
}

// SetNonceOverride replaces the nonce placed in issued ID tokens.
func (p *Provider) SetNonceOverride(nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nonceOverride = nonce
}

func (p *Provider) Issuer() string {
	return p.Server.URL
}

// SigninProvider returns the endpoints and a verifier trusting this provider's key.
func (p *Provider) SigninProvider() signin.Provider {
	return signin.Provider{
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.Server.URL + "/authorize",
			TokenURL:  p.Server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Verifier: oidc.NewVerifier(
			p.Issuer(),
			&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}},
			&oidc.Config{ClientID: p.ClientID},
		),
	}
}

// Authorize plays the user consenting at authURL and returns the callback parameters.
func (p *Provider) Authorize(t testing.TB, authURL string, identity signin.Identity) signin.Callback {
	t.Helper()

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, p.ClientID, q.Get("client_id"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	code := fmt.Sprintf("code-%d", p.count)
	p.codes[code] = issuedCode{
		challenge: q.Get("code_challenge"),
		nonce:     q.Get("nonce"),
		scope:     q.Get("scope"),
		identity:  identity,
	}
	return signin.Callback{State: q.Get("state"), Code: code}
}

func (p *Provider) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, "invalid_request")
		return
	}

	p.mu.Lock()
	issued, ok := p.codes[r.Form.Get("code")]
	delete(p.codes, r.Form.Get("code"))
	fail, grantedScope, nonceOverride := p.failExchange, p.grantedScope, p.nonceOverride
	p.mu.Unlock()
	if fail || !ok || r.Form.Get("client_id") != p.ClientID {
		writeError(w, "invalid_grant")
		return
	}

	hash := sha256.Sum256([]byte(r.Form.Get("code_verifier")))
	if base64.RawURLEncoding.EncodeToString(hash[:]) != issued.challenge {
		writeError(w, "invalid_grant")
		return
	}

	resp := map[string]any{
		"access_token": AccessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"scope":        issued.scope,
	}
	if issued.nonce != "" {
		if nonceOverride != "" {
			issued.nonce = nonceOverride
		}
		idToken, err := p.signIDToken(issued)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["id_token"] = idToken
	} else if grantedScope != "" {
		resp["scope"] = grantedScope
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (p *Provider) signIDToken(issued issuedCode) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   p.Issuer(),
		"aud":   p.ClientID,
		"sub":   issued.identity.Subject,
		"email": issued.identity.Email,
		"name":  issued.identity.Name,
		"nonce": issued.nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.key)
}

func writeError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
