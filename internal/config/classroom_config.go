package config

import "time"

type ClassroomConfig interface {
	GetClassroomEndpoint() string
	GetClassroomTimeout() time.Duration
	GetAssignmentTitle() string
	GetAssignmentDescription() string
	GetAssignmentLinks() []string
	GetAssignmentWorkType() string
	GetAssignmentState() string
}

type Classroom struct {
	Endpoint              string        `env:"CLASSROOM_ENDPOINT"`
	Timeout               time.Duration `env:"CLASSROOM_TIMEOUT" envDefault:"30s"`
	AssignmentTitle       string        `env:"ASSIGNMENT_TITLE" envDefault:"5-a-Day Sight Reading Practice"`
	AssignmentDescription string        `env:"ASSIGNMENT_DESCRIPTION" envDefault:"Please complete today's sight reading exercise using the link."`
	AssignmentLinks       []string      `env:"ASSIGNMENT_LINKS" envSeparator:"," envDefault:"https://anderson506.github.io/sightreading5aday/"`
	AssignmentWorkType    string        `env:"ASSIGNMENT_WORK_TYPE" envDefault:"ASSIGNMENT"`
	AssignmentState       string        `env:"ASSIGNMENT_STATE" envDefault:"PUBLISHED"`
}

var _ ClassroomConfig = Classroom{}

// GetClassroomEndpoint overrides the Classroom API base URL; empty uses the default.
func (c Classroom) GetClassroomEndpoint() string {
	return c.Endpoint
}

// GetClassroomTimeout bounds a single Classroom call; zero means no bound.
func (c Classroom) GetClassroomTimeout() time.Duration {
	return c.Timeout
}

func (c Classroom) GetAssignmentTitle() string {
	return c.AssignmentTitle
}

func (c Classroom) GetAssignmentDescription() string {
	return c.AssignmentDescription
}

func (c Classroom) GetAssignmentLinks() []string {
	return c.AssignmentLinks
}

func (c Classroom) GetAssignmentWorkType() string {
	return c.AssignmentWorkType
}

func (c Classroom) GetAssignmentState() string {
	return c.AssignmentState
}
