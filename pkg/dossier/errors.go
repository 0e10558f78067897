package dossier

import "errors"

var (
	// Malformed transition requests. Always surfaced to the caller.
	ErrInvalidAction = errors.New("action is not valid")
	ErrInvalidRole   = errors.New("role is not valid")

	// ErrNotFound covers a missing dossier, procedure or field, and a dossier
	// the actor may not see at all (not owner, not invited, not assigned).
	ErrNotFound = errors.New("record not found")

	// ErrAccessDenied is an ownership or role mismatch on a record that exists.
	ErrAccessDenied = errors.New("access denied")

	// ErrStateNotAllowed is returned when the dossier exists and is visible
	// but its current state is not in the operation's whitelist.
	ErrStateNotAllowed = errors.New("dossier state does not allow this operation")

	ErrInvalidDecision       = errors.New("decision is not allowed from the current state")
	ErrProcedureNotAccepting = errors.New("procedure is not published or is archived")
	ErrProcedureLocked       = errors.New("procedure is published and can no longer be modified")
	ErrStaleObject           = errors.New("record was modified concurrently")

	// Business-entity lookup. ErrEntrepriseNotFound means the identifier is
	// unknown to the registry; ErrExternalLookup is a transient failure.
	ErrEntrepriseNotFound = errors.New("entreprise not found for identifier")
	ErrExternalLookup     = errors.New("entreprise lookup failed")
)
