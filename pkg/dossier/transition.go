package dossier

import "fmt"

type transitionKey struct {
	from   State
	role   Role
	action Action
}

// transitions lists only the triples that move a dossier forward.
// Every other valid (state, role, action) triple keeps the current state.
var transitions = map[transitionKey]State{
	{StateDraft, RoleUser, ActionInitiate}: StateInitiated,

	{StateInitiated, RoleGestionnaire, ActionComment}: StateReplied,
	{StateInitiated, RoleGestionnaire, ActionFollow}:  StateUpdated,
	{StateInitiated, RoleGestionnaire, ActionValid}:   StateValidated,

	{StateReplied, RoleUser, ActionComment}:       StateUpdated,
	{StateReplied, RoleUser, ActionUpdate}:        StateUpdated,
	{StateReplied, RoleGestionnaire, ActionValid}: StateValidated,

	{StateUpdated, RoleGestionnaire, ActionComment}: StateReplied,
	{StateUpdated, RoleGestionnaire, ActionValid}:   StateValidated,

	{StateValidated, RoleUser, ActionSubmit}: StateSubmitted,

	{StateSubmitted, RoleGestionnaire, ActionReceive}: StateReceived,

	{StateReceived, RoleGestionnaire, ActionClose}: StateClosed,
}

// NextState returns the state a dossier moves to when role performs action.
// The action is checked first, then the role; neither falls through to a no-op.
func NextState(current State, role Role, action Action) (State, error) {
	if !action.Valid() {
		return current, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if !role.Valid() {
		return current, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	if next, ok := transitions[transitionKey{current, role, action}]; ok {
		return next, nil
	}

	return current, nil
}

// Advances reports whether (current, role, action) is a forward transition.
func Advances(current State, role Role, action Action) bool {
	_, ok := transitions[transitionKey{current, role, action}]
	return ok
}

// AdvancingActions lists the actions that move a dossier out of current for role.
func AdvancingActions(current State, role Role) []Action {
	var out []Action
	for _, a := range allActions {
		if Advances(current, role, a) {
			out = append(out, a)
		}
	}
	return out
}

// Decision is an explicit administrative outcome recorded by a gestionnaire.
type Decision string

const (
	DecisionRefuse              Decision = "refuse"
	DecisionWithoutContinuation Decision = "without_continuation"
)

func (d Decision) target() (State, bool) {
	switch d {
	case DecisionRefuse:
		return StateRefused, true
	case DecisionWithoutContinuation:
		return StateWithoutContinuation, true
	}
	return "", false
}

// Decide moves a dossier into one of the decision terminal states. A draft has
// not been handed in yet and a terminal dossier cannot be decided again.
func Decide(current State, decision Decision) (State, error) {
	target, ok := decision.target()
	if !ok {
		return current, fmt.Errorf("%w: %q", ErrInvalidAction, decision)
	}
	if current == StateDraft || current.Terminal() {
		return current, fmt.Errorf("%w: %s from %s", ErrInvalidDecision, decision, current)
	}
	return target, nil
}
