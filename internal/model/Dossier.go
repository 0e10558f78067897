package model

import (
	"sort"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

type Dossier struct {
	BaseModel
	State            dossier.State `gorm:"type:varchar(30);not null;default:'draft';index" json:"state"`
	Archived         bool          `gorm:"not null;default:false" json:"archived"`
	MandataireSocial bool          `gorm:"not null;default:false" json:"mandataireSocial"`
	UserID           string        `gorm:"type:text;not null;index" json:"userId"`
	ProcedureID      string        `gorm:"type:text;not null;index" json:"procedureId"`
	// Version is bumped by every state change or save; a stale write fails.
	Version int `gorm:"not null;default:1" json:"version"`

	User                 User                 `gorm:"foreignKey:UserID" json:"user"`
	Procedure            Procedure            `gorm:"foreignKey:ProcedureID" json:"-"`
	Champs               []Champ              `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"champs"`
	Entreprise           *Entreprise          `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"entreprise"`
	Etablissement        *Etablissement       `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"etablissement"`
	Individual           *Individual          `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"individual"`
	Follows              []Follow             `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"-"`
	Invites              []Invite             `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"invites"`
	Commentaires         []Commentaire        `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"-"`
	PiecesJustificatives []PieceJustificative `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"piecesJustificatives"`
	Cerfas               []Cerfa              `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d Dossier) TableName() string {
	return "dossiers"
}

// OrderedChamps sorts the champs by the order place of their field.
func (d Dossier) OrderedChamps() []Champ {
	out := append([]Champ(nil), d.Champs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TypeDeChamp.OrderPlace < out[j].TypeDeChamp.OrderPlace
	})
	return out
}

// ToDossier builds the read view used by the gate and the export engine.
// Associations that were not preloaded are exported as empty.
func (d Dossier) ToDossier() dossier.Dossier {
	out := dossier.Dossier{
		ID:               d.ID,
		State:            d.State,
		Archived:         d.Archived,
		MandataireSocial: d.MandataireSocial,
		CreatedAt:        d.createdAt(),
		UpdatedAt:        d.updatedAt(),
		OwnerID:          d.UserID,
		OwnerEmail:       d.User.Email,
		Procedure:        d.Procedure.ToProcedure(),
		Champs:           make([]dossier.ChampValue, 0, len(d.Champs)),
		FollowerEmails:   make([]string, 0, len(d.Follows)),
		Invites:          make([]dossier.Invite, 0, len(d.Invites)),
		CerfaUploaded:    len(d.Cerfas) > 0,
	}

	for _, c := range d.Champs {
		out.Champs = append(out.Champs, dossier.ChampValue{FieldID: c.TypeDeChampID, Value: c.Value})
	}
	for _, f := range d.Follows {
		out.FollowerEmails = append(out.FollowerEmails, f.Gestionnaire.Email)
	}
	for _, inv := range d.Invites {
		out.Invites = append(out.Invites, dossier.Invite{Email: inv.Email, Kind: inv.Type})
	}
	if d.Entreprise != nil {
		e := d.Entreprise.ToEntreprise()
		out.Entreprise = &e
	}
	if d.Etablissement != nil {
		e := d.Etablissement.ToEtablissement()
		out.Etablissement = &e
	}

	return out
}

type Champ struct {
	BaseModel
	DossierID     string `gorm:"type:text;not null;index" json:"dossierId"`
	TypeDeChampID string `gorm:"type:text;not null;index" json:"typeDeChampId"`
	Value         string `gorm:"type:text;default:''" json:"value"`

	TypeDeChamp TypeDeChamp `gorm:"foreignKey:TypeDeChampID" json:"typeDeChamp"`
}

func (c Champ) TableName() string {
	return "champs"
}

// Individual holds the identity of the person behind a dossier of a procedure
// opened to individuals rather than companies.
type Individual struct {
	BaseModel
	DossierID string `gorm:"type:text;not null;uniqueIndex" json:"dossierId"`
	Gender    string `gorm:"type:varchar(10);default:''" json:"gender" form:"gender"`
	Nom       string `gorm:"type:varchar(255);default:''" json:"nom" form:"nom"`
	Prenom    string `gorm:"type:varchar(255);default:''" json:"prenom" form:"prenom"`
	Birthdate string `gorm:"type:varchar(10);default:''" json:"birthdate" form:"birthdate"`
}

func (i Individual) TableName() string {
	return "individuals"
}

type Invite struct {
	BaseModel
	DossierID   string             `gorm:"type:text;not null;index" json:"dossierId"`
	Email       string             `gorm:"type:citext;not null" json:"email"`
	EmailSender string             `gorm:"type:citext;default:''" json:"emailSender"`
	Type        dossier.InviteKind `gorm:"type:varchar(30);not null" json:"type"`
}

func (i Invite) TableName() string {
	return "invites"
}

// Follow marks a gestionnaire as follower of a dossier.
type Follow struct {
	BaseModel
	DossierID      string `gorm:"type:text;not null;uniqueIndex:idx_follow_dossier_gestionnaire" json:"dossierId"`
	GestionnaireID string `gorm:"type:text;not null;uniqueIndex:idx_follow_dossier_gestionnaire" json:"gestionnaireId"`

	Gestionnaire Gestionnaire `gorm:"foreignKey:GestionnaireID" json:"gestionnaire"`
}

func (f Follow) TableName() string {
	return "follows"
}

type Commentaire struct {
	BaseModel
	DossierID string `gorm:"type:text;not null;index" json:"dossierId"`
	Email     string `gorm:"type:citext;not null" json:"email"`
	Body      string `gorm:"type:text;not null" json:"body"`
	// ChampID scopes the comment to one champ of the dossier.
	ChampID              *string `gorm:"type:text;index" json:"champId"`
	PieceJustificativeID *string `gorm:"type:text" json:"pieceJustificativeId"`

	PieceJustificative *PieceJustificative `gorm:"foreignKey:PieceJustificativeID" json:"pieceJustificative"`
}

func (c Commentaire) TableName() string {
	return "commentaires"
}

// PieceJustificative is an uploaded attachment. Attachments sent with a
// comment have no type.
type PieceJustificative struct {
	BaseModel
	DossierID                  string  `gorm:"type:text;not null;index" json:"dossierId"`
	TypeDePieceJustificativeID *string `gorm:"type:text;index" json:"typeDePieceJustificativeId"`
	UserID                     string  `gorm:"type:text" json:"userId"`
	FileID                     string  `gorm:"type:text;not null" json:"fileId"`

	File File `gorm:"foreignKey:FileID" json:"file"`
}

func (p PieceJustificative) TableName() string {
	return "pieces_justificatives"
}

// Cerfa is the official form a user may upload when the procedure allows it.
type Cerfa struct {
	BaseModel
	DossierID string `gorm:"type:text;not null;index" json:"dossierId"`
	UserID    string `gorm:"type:text" json:"userId"`
	FileID    string `gorm:"type:text;not null" json:"fileId"`

	File File `gorm:"foreignKey:FileID" json:"file"`
}

func (c Cerfa) TableName() string {
	return "cerfas"
}
