package entreprise

import (
	"strings"
	"time"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
)

type etablissementResponse struct {
	Etablissement etablissementPayload `json:"etablissement"`
}

type etablissementPayload struct {
	Siret       string `json:"siret"`
	SiegeSocial bool   `json:"siege_social"`
	Naf         string `json:"naf"`
	LibelleNaf  string `json:"libelle_naf"`
	Adresse     struct {
		L1                string `json:"l1"`
		L2                string `json:"l2"`
		L3                string `json:"l3"`
		L4                string `json:"l4"`
		L5                string `json:"l5"`
		L6                string `json:"l6"`
		L7                string `json:"l7"`
		NumeroVoie        string `json:"numero_voie"`
		TypeVoie          string `json:"type_voie"`
		NomVoie           string `json:"nom_voie"`
		ComplementAdresse string `json:"complement_adresse"`
		CodePostal        string `json:"code_postal"`
		Localite          string `json:"localite"`
		CodeInseeLocalite string `json:"code_insee_localite"`
	} `json:"adresse"`
}

func (p etablissementPayload) toEtablissement() dossier.Etablissement {
	a := p.Adresse
	lines := make([]string, 0, 7)
	for _, l := range []string{a.L1, a.L2, a.L3, a.L4, a.L5, a.L6, a.L7} {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	return dossier.Etablissement{
		Siret:             p.Siret,
		SiegeSocial:       p.SiegeSocial,
		Naf:               p.Naf,
		LibelleNaf:        p.LibelleNaf,
		Adresse:           strings.Join(lines, "\n"),
		NumeroVoie:        a.NumeroVoie,
		TypeVoie:          a.TypeVoie,
		NomVoie:           a.NomVoie,
		ComplementAdresse: a.ComplementAdresse,
		CodePostal:        a.CodePostal,
		Localite:          a.Localite,
		CodeInseeLocalite: a.CodeInseeLocalite,
	}
}

type entrepriseResponse struct {
	Entreprise entreprisePayload `json:"entreprise"`
}

type entreprisePayload struct {
	Siren                       string `json:"siren"`
	CapitalSocial               *int64 `json:"capital_social"`
	NumeroTVAIntracommunautaire string `json:"numero_tva_intracommunautaire"`
	FormeJuridique              string `json:"forme_juridique"`
	FormeJuridiqueCode          string `json:"forme_juridique_code"`
	NomCommercial               string `json:"nom_commercial"`
	RaisonSociale               string `json:"raison_sociale"`
	SiretSiegeSocial            string `json:"siret_siege_social"`
	TrancheEffectif             struct {
		Code string `json:"code"`
	} `json:"tranche_effectif_salarie_entreprise"`
	// DateCreation is a unix timestamp.
	DateCreation *int64  `json:"date_creation"`
	Nom          *string `json:"nom"`
	Prenom       *string `json:"prenom"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (p entreprisePayload) toEntreprise() dossier.Entreprise {
	var created *time.Time
	if p.DateCreation != nil {
		t := time.Unix(*p.DateCreation, 0).UTC()
		created = &t
	}

	return dossier.Entreprise{
		Siren:                       p.Siren,
		CapitalSocial:               p.CapitalSocial,
		NumeroTVAIntracommunautaire: p.NumeroTVAIntracommunautaire,
		FormeJuridique:              p.FormeJuridique,
		FormeJuridiqueCode:          p.FormeJuridiqueCode,
		NomCommercial:               p.NomCommercial,
		RaisonSociale:               p.RaisonSociale,
		SiretSiegeSocial:            p.SiretSiegeSocial,
		CodeEffectifEntreprise:      p.TrancheEffectif.Code,
		DateCreation:                created,
		Nom:                         deref(p.Nom),
		Prenom:                      deref(p.Prenom),
	}
}
