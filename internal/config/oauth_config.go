package config

import (
	"time"
)

const (
	clientIDEnvVar        = "GOOGLE_CLIENT_ID"
	authCodeTimeoutEnvVar = "AUTH_CODE_TIMEOUT"

	scopeOpenID                = "openid"
	scopeEmail                 = "email"
	scopeProfile               = "profile"
	scopeClassroomCoursesRO    = "https://www.googleapis.com/auth/classroom.courses.readonly"
	scopeClassroomCourseworkMe = "https://www.googleapis.com/auth/classroom.coursework.me"
)

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetIssuer() string
	GetRedirectPath() string
	GetIdentityScopes() []string
	GetGrantScopes() []string
	GetAuthCodeTimeout() time.Duration
}

type OAuth struct {
	ClientID        string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string        `env:"GOOGLE_CLIENT_SECRET"`
	Issuer          string        `env:"OIDC_ISSUER" envDefault:"https://accounts.google.com"`
	AuthCodeTimeout time.Duration `env:"AUTH_CODE_TIMEOUT" envDefault:"10m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetIssuer() string {
	return o.Issuer
}

func (OAuth) GetRedirectPath() string {
	return "/callback"
}

// GetIdentityScopes are requested in the first (identity confirmation) phase.
func (OAuth) GetIdentityScopes() []string {
	return []string{scopeOpenID, scopeEmail, scopeProfile}
}

// GetGrantScopes are requested in the second (Classroom grant) phase.
func (OAuth) GetGrantScopes() []string {
	return []string{scopeClassroomCoursesRO, scopeClassroomCourseworkMe}
}

// GetAuthCodeTimeout bounds how long a pending sign-in may wait for its callback.
func (o OAuth) GetAuthCodeTimeout() time.Duration {
	return o.AuthCodeTimeout
}
