package dossier

import (
	"errors"
	"fmt"
)

type ActorRole string

const (
	ActorUser           ActorRole = "user"
	ActorGestionnaire   ActorRole = "gestionnaire"
	ActorAdministrateur ActorRole = "administrateur"
)

func (r ActorRole) Valid() bool {
	return r == ActorUser || r == ActorGestionnaire || r == ActorAdministrateur
}

// WorkflowRole maps the actor onto the role used by the transition table.
func (r ActorRole) WorkflowRole() (Role, error) {
	switch r {
	case ActorUser:
		return RoleUser, nil
	case ActorGestionnaire:
		return RoleGestionnaire, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, r)
}

// Actor is the authenticated caller of one request.
type Actor struct {
	ID    string
	Email string
	Role  ActorRole
}

// Route is an externally exposed operation and the dossier states it accepts.
type Route struct {
	Name   string
	States []State
}

var (
	RouteRecapitulatif = Route{
		Name: "recapitulatif",
		States: []State{
			StateInitiated, StateReplied, StateUpdated, StateValidated, StateReceived,
			StateSubmitted, StateWithoutContinuation, StateClosed, StateRefused,
		},
	}
	RouteDescription = Route{
		Name:   "description",
		States: []State{StateDraft, StateInitiated, StateReplied, StateUpdated},
	}
	RoutePiecesJustificatives = Route{
		Name:   "pieces_justificatives",
		States: []State{StateDraft, StateInitiated, StateReplied, StateUpdated},
	}
	RouteEntreprise = Route{
		Name:   "entreprise",
		States: []State{StateDraft},
	}
	RouteDestroy = Route{
		Name:   "destroy",
		States: []State{StateDraft},
	}
	RouteCommentaire = Route{
		Name:   "commentaire",
		States: States(),
	}
	RouteInvite = Route{
		Name:   "invite",
		States: States(),
	}
	// RouteWorkflow carries the owner's initiate and submit requests. The
	// transition table decides whether they move the dossier.
	RouteWorkflow = Route{
		Name:   "workflow",
		States: States(),
	}
	RouteBackoffice = Route{
		Name: "backoffice",
		States: []State{
			StateInitiated, StateReplied, StateUpdated, StateValidated, StateSubmitted,
			StateReceived, StateRefused, StateWithoutContinuation, StateClosed,
		},
	}
)

// IsAuthorized reports whether the dossier's state is in requiredStates.
func IsAuthorized(requiredStates []State, d Dossier) bool {
	for _, s := range requiredStates {
		if s == d.State {
			return true
		}
	}
	return false
}

// CanSee reports whether the actor may reach the dossier at all. Users must
// own it or be invited; gestionnaires must be assigned to its procedure or
// invited as gestionnaire; administrators must own the procedure.
func CanSee(actor Actor, d Dossier) bool {
	switch actor.Role {
	case ActorUser:
		return d.OwnerID == actor.ID || d.Owner(actor.Email) || d.InvitedByUser(actor.Email)
	case ActorGestionnaire:
		return d.Procedure.AssignedTo(actor.ID) || d.InvitedGestionnaire(actor.Email)
	case ActorAdministrateur:
		return d.Procedure.AdministrateurID == actor.ID
	}
	return false
}

// Authorize runs the visibility check, then the state whitelist. A missing or
// invisible dossier wraps ErrNotFound, a wrong state wraps ErrStateNotAllowed.
// Gestionnaires never reach a draft, whatever the route.
func Authorize(actor Actor, route Route, d *Dossier) error {
	if d == nil || !CanSee(actor, *d) {
		return fmt.Errorf("%s: %w", route.Name, ErrNotFound)
	}
	if actor.Role == ActorGestionnaire && d.State == StateDraft {
		return fmt.Errorf("%s from %s: %w", route.Name, d.State, ErrStateNotAllowed)
	}
	if !IsAuthorized(route.States, *d) {
		return fmt.Errorf("%s from %s: %w", route.Name, d.State, ErrStateNotAllowed)
	}
	return nil
}

const (
	MessageDossierNotAccessible = "Vous n'avez pas accès à ce dossier."
	MessageStateNotAllowed      = "Le statut de votre dossier n'autorise pas cette URL"
)

// RefusalMessage returns the user facing message for a gate refusal, or ""
// when err is not a gate refusal.
func RefusalMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return MessageDossierNotAccessible
	case errors.Is(err, ErrStateNotAllowed):
		return MessageStateNotAllowed
	}
	return ""
}
