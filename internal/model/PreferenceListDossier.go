package model

import "github.com/SeakMengs/DossierFlow/pkg/dossier"

// PreferenceListDossier is one listing column a gestionnaire chose. A nil
// procedure means the column applies to the cross-procedure listing.
type PreferenceListDossier struct {
	BaseModel
	GestionnaireID string            `gorm:"type:text;not null;index" json:"gestionnaireId"`
	ProcedureID    *string           `gorm:"type:text;index" json:"procedureId"`
	Table          string            `gorm:"column:table_name;type:varchar(30);not null" json:"table"`
	Attr           string            `gorm:"type:varchar(100);not null" json:"attr"`
	Order          dossier.SortOrder `gorm:"column:sort_order;type:varchar(4);default:''" json:"order"`
	Filter         string            `gorm:"type:text;default:''" json:"filter"`
	Position       int               `gorm:"not null;default:0" json:"position"`
}

func (p PreferenceListDossier) TableName() string {
	return "preference_list_dossiers"
}

func (p PreferenceListDossier) ToPreference() dossier.Preference {
	return dossier.Preference{
		Group:  p.Table,
		Key:    p.Attr,
		Order:  p.Order,
		Filter: p.Filter,
	}
}
