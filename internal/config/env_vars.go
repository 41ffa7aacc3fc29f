package config

import (
	"fmt"
	"strings"
)

const (
	envDev = "DEV"
)

type EnvVars struct {
	Port         string `env:"PORT" envDefault:"8080"`
	AppName      string `env:"APP_NAME" envDefault:"Classroom Assign"`
	Environment  string `env:"ENV" envDefault:"DEV"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	OtelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Environment == "" {
		return envDev
	}
	return strings.ToUpper(e.Environment)
}

// GetBaseURL returns the externally visible base URL (e.g., "https://classroom.example.com").
// The OAuth redirect URI is derived from it.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.BaseURL, "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetOtelEndpoint returns the OTLP/HTTP endpoint; empty disables trace export.
func (e EnvVars) GetOtelEndpoint() string {
	return e.OtelEndpoint
}

// IsDev reports whether the environment is the development environment.
func IsDev(c EnvConfig) bool {
	return c.GetEnv() == envDev
}
