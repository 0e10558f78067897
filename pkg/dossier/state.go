package dossier

import "fmt"

type State string

const (
	StateDraft               State = "draft"
	StateInitiated           State = "initiated"
	StateReplied             State = "replied"
	StateUpdated             State = "updated"
	StateValidated           State = "validated"
	StateSubmitted           State = "submitted"
	StateReceived            State = "received"
	StateRefused             State = "refused"
	StateWithoutContinuation State = "without_continuation"
	StateClosed              State = "closed"
)

var allStates = []State{
	StateDraft,
	StateInitiated,
	StateReplied,
	StateUpdated,
	StateValidated,
	StateSubmitted,
	StateReceived,
	StateRefused,
	StateWithoutContinuation,
	StateClosed,
}

// States returns every lifecycle state in workflow order.
func States() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

func (s State) Valid() bool {
	for _, st := range allStates {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal states accept comments but never move again.
func (s State) Terminal() bool {
	return s == StateRefused || s == StateWithoutContinuation || s == StateClosed
}

func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown dossier state %q", s)
	}
	return st, nil
}

type Role string

const (
	RoleUser         Role = "user"
	RoleGestionnaire Role = "gestionnaire"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleGestionnaire
}

type Action string

const (
	ActionUpdate              Action = "update"
	ActionComment             Action = "comment"
	ActionInitiate            Action = "initiate"
	ActionSubmit              Action = "submit"
	ActionFollow              Action = "follow"
	ActionValid               Action = "valid"
	ActionReceive             Action = "receive"
	ActionRefuse              Action = "refuse"
	ActionWithoutContinuation Action = "without_continuation"
	ActionClose               Action = "close"
)

var allActions = []Action{
	ActionUpdate,
	ActionComment,
	ActionInitiate,
	ActionSubmit,
	ActionFollow,
	ActionValid,
	ActionReceive,
	ActionRefuse,
	ActionWithoutContinuation,
	ActionClose,
}

func Actions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

func (a Action) Valid() bool {
	for _, act := range allActions {
		if act == a {
			return true
		}
	}
	return false
}
