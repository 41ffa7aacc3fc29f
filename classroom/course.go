package classroom

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-classroom-assign/internal/errors"
)

// Course is an active course the signed-in user belongs to.
type Course struct {
	ID   string
	Name string
}

type WorkType string

const (
	WorkTypeAssignment             WorkType = "ASSIGNMENT"
	WorkTypeShortAnswerQuestion    WorkType = "SHORT_ANSWER_QUESTION"
	WorkTypeMultipleChoiceQuestion WorkType = "MULTIPLE_CHOICE_QUESTION"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkTypeAssignment, WorkTypeShortAnswerQuestion, WorkTypeMultipleChoiceQuestion:
		return true
	}
	return false
}

type PublicationState string

const (
	StatePublished PublicationState = "PUBLISHED"
	StateDraft     PublicationState = "DRAFT"
)

func (s PublicationState) Valid() bool {
	return s == StatePublished || s == StateDraft
}

// Material is a link attached to a course work item.
type Material struct {
	URL string
}

// Draft is the course work to create. It is never stored locally.
type Draft struct {
	Title       string
	Description string
	Materials   []Material
	WorkType    WorkType
	State       PublicationState
}

// NewDraft builds a draft from configured values, one link material per URL.
func NewDraft(title, description string, links []string, workType, state string) (Draft, error) {
	d := Draft{
		Title:       title,
		Description: description,
		WorkType:    WorkType(strings.ToUpper(workType)),
		State:       PublicationState(strings.ToUpper(state)),
	}
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			d.Materials = append(d.Materials, Material{URL: l})
		}
	}
	if err := d.Validate(); err != nil {
		return Draft{}, apperrors.Wrapf(err, "[classroom NewDraft]")
	}
	return d, nil
}

// Clone returns a copy that shares no memory with d.
func (d Draft) Clone() Draft {
	c := d
	c.Materials = append([]Material(nil), d.Materials...)
	return c
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !d.WorkType.Valid() {
		return fmt.Errorf("%w: unknown work type %q", ErrValidation, d.WorkType)
	}
	if !d.State.Valid() {
		return fmt.Errorf("%w: unknown publication state %q", ErrValidation, d.State)
	}
	for _, m := range d.Materials {
		u, err := url.Parse(m.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: invalid material url %q", ErrValidation, m.URL)
		}
	}
	return nil
}

// Assignment is the course work the remote service created.
type Assignment struct {
	ID            string
	CourseID      string
	Title         string
	State         PublicationState
	AlternateLink string
}
