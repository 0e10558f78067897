package dossier

import (
	"regexp"
	"strings"
	"time"
)

// FieldDef is one custom form field (type de champ) of a procedure.
type FieldDef struct {
	ID          string
	Label       string
	Type        string
	Description string
	Order       int
	Mandatory   bool
	// ListEligible marks fields that may be shown as a listing column.
	ListEligible bool
}

func (f *FieldDef) Position() int       { return f.Order }
func (f *FieldDef) SetPosition(pos int) { f.Order = pos }

// PieceTypeDef is one required attachment type of a procedure.
type PieceTypeDef struct {
	ID          string
	Label       string
	Description string
	Order       int
	Mandatory   bool
}

func (p *PieceTypeDef) Position() int       { return p.Order }
func (p *PieceTypeDef) SetPosition(pos int) { p.Order = pos }

type Procedure struct {
	ID               string
	Label            string
	Description      string
	Published        bool
	Archived         bool
	ForIndividual    bool
	CerfaFlag        bool
	AdministrateurID string
	GestionnaireIDs  []string
	Fields           []FieldDef
	PieceTypes       []PieceTypeDef
}

// Accepting reports whether new dossiers may be started on the procedure.
func (p Procedure) Accepting() bool {
	return p.Published && !p.Archived
}

// Locked procedures are published and their schema is frozen.
func (p Procedure) Locked() bool {
	return p.Published
}

func (p Procedure) AssignedTo(gestionnaireID string) bool {
	for _, id := range p.GestionnaireIDs {
		if id == gestionnaireID {
			return true
		}
	}
	return false
}

var (
	nonPathChars   = regexp.MustCompile(`[^a-z0-9\-_]`)
	trailingUnders = regexp.MustCompile(`_*$`)
	repeatedUnders = regexp.MustCompile(`_+`)
)

// DefaultPath derives a url path segment from the procedure label.
func (p Procedure) DefaultPath() string {
	path := nonPathChars.ReplaceAllString(strings.ToLower(p.Label), "_")
	path = trailingUnders.ReplaceAllString(path, "")
	return repeatedUnders.ReplaceAllString(path, "_")
}

type ChampValue struct {
	FieldID string
	Value   string
}

type InviteKind string

const (
	InviteUser         InviteKind = "InviteUser"
	InviteGestionnaire InviteKind = "InviteGestionnaire"
)

type Invite struct {
	Email string
	Kind  InviteKind
}

type Entreprise struct {
	Siren                       string
	CapitalSocial               *int64
	NumeroTVAIntracommunautaire string
	FormeJuridique              string
	FormeJuridiqueCode          string
	NomCommercial               string
	RaisonSociale               string
	SiretSiegeSocial            string
	CodeEffectifEntreprise      string
	DateCreation                *time.Time
	Nom                         string
	Prenom                      string
}

type Etablissement struct {
	Siret             string
	SiegeSocial       bool
	Naf               string
	LibelleNaf        string
	Adresse           string
	NumeroVoie        string
	TypeVoie          string
	NomVoie           string
	ComplementAdresse string
	CodePostal        string
	Localite          string
	CodeInseeLocalite string
}

// Dossier is the read view of one submission used by the gate and the
// export engine.
type Dossier struct {
	ID               string
	State            State
	Archived         bool
	MandataireSocial bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	OwnerID          string
	OwnerEmail       string
	Procedure        Procedure
	Champs           []ChampValue
	Entreprise       *Entreprise
	Etablissement    *Etablissement
	FollowerEmails   []string
	Invites          []Invite
	CerfaUploaded    bool
}

// FollowersEmails joins follower emails with a single space.
func (d Dossier) FollowersEmails() string {
	return strings.Join(d.FollowerEmails, " ")
}

func (d Dossier) TotalFollow() int {
	return len(d.FollowerEmails)
}

func (d Dossier) Owner(email string) bool {
	return d.OwnerEmail != "" && strings.EqualFold(d.OwnerEmail, email)
}

// InvitedByUser is true only for invites sent to users, not to gestionnaires.
func (d Dossier) InvitedByUser(email string) bool {
	for _, inv := range d.Invites {
		if inv.Kind == InviteUser && strings.EqualFold(inv.Email, email) {
			return true
		}
	}
	return false
}

func (d Dossier) InvitedGestionnaire(email string) bool {
	for _, inv := range d.Invites {
		if inv.Kind == InviteGestionnaire && strings.EqualFold(inv.Email, email) {
			return true
		}
	}
	return false
}

func (d Dossier) CerfaAvailable() bool {
	return d.Procedure.CerfaFlag && d.CerfaUploaded
}

func (d Dossier) champValue(fieldID string) string {
	for _, c := range d.Champs {
		if c.FieldID == fieldID {
			return c.Value
		}
	}
	return ""
}
