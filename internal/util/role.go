package util

import (
	"slices"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

// HasRole reports whether role is one of the allowed roles.
func HasRole(role dossier.ActorRole, allowed []dossier.ActorRole) bool {
	return slices.Contains(allowed, role)
}
