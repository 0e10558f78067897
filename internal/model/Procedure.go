package model

import (
	"sort"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

type Procedure struct {
	BaseModel
	Libelle          string  `gorm:"type:varchar(255);not null" json:"libelle" form:"libelle" binding:"required,strNotEmpty,cmax=255"`
	Description      string  `gorm:"type:text;not null" json:"description" form:"description" binding:"required,strNotEmpty"`
	Organisation     string  `gorm:"type:varchar(255);default:''" json:"organisation" form:"organisation"`
	Published        bool    `gorm:"not null;default:false" json:"published"`
	Archived         bool    `gorm:"not null;default:false" json:"archived"`
	ForIndividual    bool    `gorm:"not null;default:false" json:"forIndividual" form:"forIndividual"`
	CerfaFlag        bool    `gorm:"not null;default:false" json:"cerfaFlag" form:"cerfaFlag"`
	Path             *string `gorm:"type:varchar(255);uniqueIndex" json:"path"`
	AdministrateurID string  `gorm:"type:text;not null;index" json:"administrateurId"`
	// Version guards concurrent reorders of the field lists.
	Version int `gorm:"not null;default:1" json:"version"`

	TypesDeChamp              []TypeDeChamp              `gorm:"foreignKey:ProcedureID;constraint:OnDelete:CASCADE" json:"typesDeChamp"`
	TypesDePieceJustificative []TypeDePieceJustificative `gorm:"foreignKey:ProcedureID;constraint:OnDelete:CASCADE" json:"typesDePieceJustificative"`
	Gestionnaires             []Gestionnaire             `gorm:"many2many:assign_tos;" json:"-"`
}

func (p Procedure) TableName() string {
	return "procedures"
}

func (p Procedure) ToProcedure() dossier.Procedure {
	out := dossier.Procedure{
		ID:               p.ID,
		Label:            p.Libelle,
		Description:      p.Description,
		Published:        p.Published,
		Archived:         p.Archived,
		ForIndividual:    p.ForIndividual,
		CerfaFlag:        p.CerfaFlag,
		AdministrateurID: p.AdministrateurID,
		Fields:           make([]dossier.FieldDef, 0, len(p.TypesDeChamp)),
		PieceTypes:       make([]dossier.PieceTypeDef, 0, len(p.TypesDePieceJustificative)),
		GestionnaireIDs:  make([]string, 0, len(p.Gestionnaires)),
	}

	for _, tdc := range p.TypesDeChamp {
		out.Fields = append(out.Fields, tdc.ToFieldDef())
	}
	for _, tdpj := range p.TypesDePieceJustificative {
		out.PieceTypes = append(out.PieceTypes, tdpj.ToPieceTypeDef())
	}
	for _, g := range p.Gestionnaires {
		out.GestionnaireIDs = append(out.GestionnaireIDs, g.ID)
	}

	return out
}

// OrderedTypesDeChamp returns the fields by order place.
func (p Procedure) OrderedTypesDeChamp() []TypeDeChamp {
	out := append([]TypeDeChamp(nil), p.TypesDeChamp...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderPlace < out[j].OrderPlace })
	return out
}

const TypeChampText = "text"

// Field types that only structure the form and never hold a value worth listing.
const (
	TypeChampHeaderSection = "header_section"
	TypeChampExplication   = "explication"
)

// TypeDeChamp is one custom field of a procedure form.
type TypeDeChamp struct {
	BaseModel
	ProcedureID string `gorm:"type:text;not null;index" json:"procedureId"`
	Libelle     string `gorm:"type:varchar(255);not null" json:"libelle" binding:"required,strNotEmpty"`
	TypeChamp   string `gorm:"type:varchar(50);not null;default:'text'" json:"typeChamp"`
	Description string `gorm:"type:text;default:''" json:"description"`
	OrderPlace  int    `gorm:"not null;default:0" json:"orderPlace"`
	Mandatory   bool   `gorm:"not null;default:false" json:"mandatory"`
}

func (t TypeDeChamp) TableName() string {
	return "types_de_champ"
}

func (t TypeDeChamp) ListEligible() bool {
	return t.TypeChamp != TypeChampHeaderSection && t.TypeChamp != TypeChampExplication
}

func (t TypeDeChamp) ToFieldDef() dossier.FieldDef {
	return dossier.FieldDef{
		ID:           t.ID,
		Label:        t.Libelle,
		Type:         t.TypeChamp,
		Description:  t.Description,
		Order:        t.OrderPlace,
		Mandatory:    t.Mandatory,
		ListEligible: t.ListEligible(),
	}
}

// TypeDePieceJustificative is one attachment a procedure asks for.
type TypeDePieceJustificative struct {
	BaseModel
	ProcedureID string `gorm:"type:text;not null;index" json:"procedureId"`
	Libelle     string `gorm:"type:varchar(255);not null" json:"libelle" binding:"required,strNotEmpty"`
	Description string `gorm:"type:text;default:''" json:"description"`
	OrderPlace  int    `gorm:"not null;default:0" json:"orderPlace"`
	Mandatory   bool   `gorm:"not null;default:false" json:"mandatory"`
}

func (t TypeDePieceJustificative) TableName() string {
	return "types_de_piece_justificative"
}

func (t TypeDePieceJustificative) ToPieceTypeDef() dossier.PieceTypeDef {
	return dossier.PieceTypeDef{
		ID:          t.ID,
		Label:       t.Libelle,
		Description: t.Description,
		Order:       t.OrderPlace,
		Mandatory:   t.Mandatory,
	}
}
