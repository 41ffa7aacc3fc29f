package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSweepInterval() time.Duration
}

type Security struct {
	MaxSessionAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"1h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

var _ SecurityConfig = Security{}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.MaxSessionAge
}

func (s Security) GetSweepInterval() time.Duration {
	if s.SweepInterval <= 0 {
		return time.Minute
	}
	return s.SweepInterval
}
