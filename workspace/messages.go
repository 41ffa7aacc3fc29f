package workspace

// Feedback shown to the user. Errors never surface any other way.
const (
	MsgLoadingCourses  = "Loading courses..."
	MsgNoActiveCourses = "No active courses found."
	MsgLoadFailed      = "Could not load courses."
	MsgSelectCourse    = "Please select a course first."
	MsgCreating        = "Creating assignment..."
	MsgCreated         = "Successfully created assignment!"
	MsgCreateFailed    = "Failed to create assignment."
)
