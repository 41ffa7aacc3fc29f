package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	ClassroomConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	GetOtelEndpoint() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Classroom
}

// New reads the configuration from the environment.
func New() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, apperrors.Wrapf(err, "[config New] parse env")
	}
	if err := c.validate(); err != nil {
		return nil, apperrors.Wrapf(err, "[config New]")
	}
	return c, nil
}

func (c mainConfig) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%s must be set", clientIDEnvVar)
	}
	if c.AuthCodeTimeout <= 0 {
		return fmt.Errorf("%s must be positive", authCodeTimeoutEnvVar)
	}
	return nil
}
