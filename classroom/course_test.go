package classroom_test

import (
	"testing"

	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	t.Run("normalises enums and trims links", func(t *testing.T) {
		d, err := classroom.NewDraft("Title", "Desc", []string{" https://example.com/a ", ""}, "assignment", "draft")
		require.NoError(t, err)
		require.Equal(t, classroom.WorkTypeAssignment, d.WorkType)
		require.Equal(t, classroom.StateDraft, d.State)
		require.Equal(t, []classroom.Material{{URL: "https://example.com/a"}}, d.Materials)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := classroom.NewDraft(" ", "", nil, "ASSIGNMENT", "PUBLISHED")
		require.ErrorIs(t, err, classroom.ErrValidation)
	})

	t.Run("unknown work type", func(t *testing.T) {
		_, err := classroom.NewDraft("Title", "", nil, "ESSAY", "PUBLISHED")
		require.ErrorIs(t, err, classroom.ErrValidation)
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := classroom.NewDraft("Title", "", nil, "ASSIGNMENT", "ARCHIVED")
		require.ErrorIs(t, err, classroom.ErrValidation)
	})

	t.Run("relative material url", func(t *testing.T) {
		_, err := classroom.NewDraft("Title", "", []string{"/local"}, "ASSIGNMENT", "PUBLISHED")
		require.ErrorIs(t, err, classroom.ErrValidation)
	})
}

func TestDraft_Clone(t *testing.T) {
	d, err := classroom.NewDraft("Title", "", []string{"https://example.com/a"}, "ASSIGNMENT", "PUBLISHED")
	require.NoError(t, err)

	c := d.Clone()
	c.Materials[0].URL = "https://example.com/changed"
	require.Equal(t, "https://example.com/a", d.Materials[0].URL)
}
