package flowrepo

import "time"

// Phase identifies which half of the two-phase sign-in a pending flow belongs to.
type Phase int

const (
	// PhaseIdentity waits for the identity provider to confirm who the user is.
	PhaseIdentity Phase = iota + 1
	// PhaseGrant waits for the user to grant the scoped Classroom access.
	PhaseGrant
)

func (p Phase) String() string {
	switch p {
	case PhaseIdentity:
		return "identity"
	case PhaseGrant:
		return "grant"
	default:
		return "unknown"
	}
}

// AuthFlowState is the pending state of one sign-in round trip, keyed by the OAuth state parameter.
type AuthFlowState struct {
	Phase        Phase
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time

	// Confirmed identity, carried into the grant phase
	Subject string
	Email   string
	Name    string
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
	// Take returns the flow and removes it in one step, so each state is claimed once
	Take(state string) (*AuthFlowState, error)
	// DeleteExpired removes flows created before the given time and returns how many were removed
	DeleteExpired(before time.Time) (int, error)
}
