package model

import (
	"time"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

// Entreprise is the company snapshot fetched from the registry for a dossier.
type Entreprise struct {
	BaseModel
	DossierID                   string     `gorm:"type:text;not null;uniqueIndex" json:"dossierId"`
	Siren                       string     `gorm:"type:varchar(9);not null" json:"siren"`
	CapitalSocial               *int64     `json:"capitalSocial"`
	NumeroTVAIntracommunautaire string     `gorm:"type:varchar(20);default:''" json:"numeroTvaIntracommunautaire"`
	FormeJuridique              string     `gorm:"type:varchar(255);default:''" json:"formeJuridique"`
	FormeJuridiqueCode          string     `gorm:"type:varchar(10);default:''" json:"formeJuridiqueCode"`
	NomCommercial               string     `gorm:"type:varchar(255);default:''" json:"nomCommercial"`
	RaisonSociale               string     `gorm:"type:varchar(255);default:''" json:"raisonSociale"`
	SiretSiegeSocial            string     `gorm:"type:varchar(14);default:''" json:"siretSiegeSocial"`
	CodeEffectifEntreprise      string     `gorm:"type:varchar(10);default:''" json:"codeEffectifEntreprise"`
	DateCreation                *time.Time `json:"dateCreation"`
	Nom                         string     `gorm:"type:varchar(255);default:''" json:"nom"`
	Prenom                      string     `gorm:"type:varchar(255);default:''" json:"prenom"`
}

func (e Entreprise) TableName() string {
	return "entreprises"
}

func (e Entreprise) ToEntreprise() dossier.Entreprise {
	return dossier.Entreprise{
		Siren:                       e.Siren,
		CapitalSocial:               e.CapitalSocial,
		NumeroTVAIntracommunautaire: e.NumeroTVAIntracommunautaire,
		FormeJuridique:              e.FormeJuridique,
		FormeJuridiqueCode:          e.FormeJuridiqueCode,
		NomCommercial:               e.NomCommercial,
		RaisonSociale:               e.RaisonSociale,
		SiretSiegeSocial:            e.SiretSiegeSocial,
		CodeEffectifEntreprise:      e.CodeEffectifEntreprise,
		DateCreation:                e.DateCreation,
		Nom:                         e.Nom,
		Prenom:                      e.Prenom,
	}
}

func NewEntreprise(dossierID string, e dossier.Entreprise) Entreprise {
	return Entreprise{
		DossierID:                   dossierID,
		Siren:                       e.Siren,
		CapitalSocial:               e.CapitalSocial,
		NumeroTVAIntracommunautaire: e.NumeroTVAIntracommunautaire,
		FormeJuridique:              e.FormeJuridique,
		FormeJuridiqueCode:          e.FormeJuridiqueCode,
		NomCommercial:               e.NomCommercial,
		RaisonSociale:               e.RaisonSociale,
		SiretSiegeSocial:            e.SiretSiegeSocial,
		CodeEffectifEntreprise:      e.CodeEffectifEntreprise,
		DateCreation:                e.DateCreation,
		Nom:                         e.Nom,
		Prenom:                      e.Prenom,
	}
}

// Etablissement is the establishment matching the siret entered by the user.
type Etablissement struct {
	BaseModel
	DossierID         string `gorm:"type:text;not null;uniqueIndex" json:"dossierId"`
	EntrepriseID      string `gorm:"type:text;index" json:"entrepriseId"`
	Siret             string `gorm:"type:varchar(14);not null" json:"siret"`
	SiegeSocial       bool   `gorm:"not null;default:false" json:"siegeSocial"`
	Naf               string `gorm:"type:varchar(10);default:''" json:"naf"`
	LibelleNaf        string `gorm:"type:varchar(255);default:''" json:"libelleNaf"`
	Adresse           string `gorm:"type:text;default:''" json:"adresse"`
	NumeroVoie        string `gorm:"type:varchar(20);default:''" json:"numeroVoie"`
	TypeVoie          string `gorm:"type:varchar(20);default:''" json:"typeVoie"`
	NomVoie           string `gorm:"type:varchar(255);default:''" json:"nomVoie"`
	ComplementAdresse string `gorm:"type:varchar(255);default:''" json:"complementAdresse"`
	CodePostal        string `gorm:"type:varchar(10);default:''" json:"codePostal"`
	Localite          string `gorm:"type:varchar(255);default:''" json:"localite"`
	CodeInseeLocalite string `gorm:"type:varchar(10);default:''" json:"codeInseeLocalite"`
}

func (e Etablissement) TableName() string {
	return "etablissements"
}

func (e Etablissement) ToEtablissement() dossier.Etablissement {
	return dossier.Etablissement{
		Siret:             e.Siret,
		SiegeSocial:       e.SiegeSocial,
		Naf:               e.Naf,
		LibelleNaf:        e.LibelleNaf,
		Adresse:           e.Adresse,
		NumeroVoie:        e.NumeroVoie,
		TypeVoie:          e.TypeVoie,
		NomVoie:           e.NomVoie,
		ComplementAdresse: e.ComplementAdresse,
		CodePostal:        e.CodePostal,
		Localite:          e.Localite,
		CodeInseeLocalite: e.CodeInseeLocalite,
	}
}

func NewEtablissement(dossierID, entrepriseID string, e dossier.Etablissement) Etablissement {
	return Etablissement{
		DossierID:         dossierID,
		EntrepriseID:      entrepriseID,
		Siret:             e.Siret,
		SiegeSocial:       e.SiegeSocial,
		Naf:               e.Naf,
		LibelleNaf:        e.LibelleNaf,
		Adresse:           e.Adresse,
		NumeroVoie:        e.NumeroVoie,
		TypeVoie:          e.TypeVoie,
		NomVoie:           e.NomVoie,
		ComplementAdresse: e.ComplementAdresse,
		CodePostal:        e.CodePostal,
		Localite:          e.Localite,
		CodeInseeLocalite: e.CodeInseeLocalite,
	}
}
