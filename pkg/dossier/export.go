package dossier

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout every exported date is rendered with, in UTC.
const DateFormat = "2006-01-02 15:04:05 MST"

var intrinsicExportKeys = []string{
	"id",
	"created_at",
	"updated_at",
	"followers_gestionnaires_emails",
	"state",
	"archived",
	"mandataire_social",
}

var etablissementExportKeys = []string{
	"etablissement_siret",
	"etablissement_siege_social",
	"etablissement_naf",
	"etablissement_libelle_naf",
	"etablissement_adresse",
	"etablissement_numero_voie",
	"etablissement_type_voie",
	"etablissement_nom_voie",
	"etablissement_complement_adresse",
	"etablissement_code_postal",
	"etablissement_localite",
	"etablissement_code_insee_localite",
}

var entrepriseExportKeys = []string{
	"entreprise_siren",
	"entreprise_capital_social",
	"entreprise_numero_tva_intracommunautaire",
	"entreprise_forme_juridique",
	"entreprise_forme_juridique_code",
	"entreprise_nom_commercial",
	"entreprise_raison_sociale",
	"entreprise_siret_siege_social",
	"entreprise_code_effectif_entreprise",
	"entreprise_date_creation",
	"entreprise_nom",
	"entreprise_prenom",
}

func IntrinsicExportKeys() []string {
	return append([]string(nil), intrinsicExportKeys...)
}

// EntrepriseExportKeys lists the etablissement keys followed by the
// entreprise keys, in row order.
func EntrepriseExportKeys() []string {
	keys := make([]string, 0, len(etablissementExportKeys)+len(entrepriseExportKeys))
	keys = append(keys, etablissementExportKeys...)
	return append(keys, entrepriseExportKeys...)
}

// Normalize renders one export value as a display string. nil, nil pointers
// and zero times become "".
func Normalize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(DateFormat)
	case *time.Time:
		if val == nil {
			return ""
		}
		return Normalize(*val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case *int64:
		if val == nil {
			return ""
		}
		return strconv.FormatInt(*val, 10)
	case State:
		return string(val)
	case []string:
		return strings.Join(val, " ")
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// NormalizeRow renders every value of a typed row.
func NormalizeRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = Normalize(v)
	}
	return out
}

func etablissementValues(e *Etablissement) []any {
	if e == nil {
		return make([]any, len(etablissementExportKeys))
	}
	return []any{
		e.Siret,
		e.SiegeSocial,
		e.Naf,
		e.LibelleNaf,
		e.Adresse,
		e.NumeroVoie,
		e.TypeVoie,
		e.NomVoie,
		e.ComplementAdresse,
		e.CodePostal,
		e.Localite,
		e.CodeInseeLocalite,
	}
}

func entrepriseValues(e *Entreprise) []any {
	if e == nil {
		return make([]any, len(entrepriseExportKeys))
	}
	return []any{
		e.Siren,
		e.CapitalSocial,
		e.NumeroTVAIntracommunautaire,
		e.FormeJuridique,
		e.FormeJuridiqueCode,
		e.NomCommercial,
		e.RaisonSociale,
		e.SiretSiegeSocial,
		e.CodeEffectifEntreprise,
		e.DateCreation,
		e.Nom,
		e.Prenom,
	}
}

func entrepriseRow(d Dossier) []any {
	return append(etablissementValues(d.Etablissement), entrepriseValues(d.Entreprise)...)
}

func intrinsicRow(d Dossier) []any {
	return []any{
		d.ID,
		d.CreatedAt,
		d.UpdatedAt,
		d.FollowersEmails(),
		d.State,
		d.Archived,
		d.MandataireSocial,
	}
}

// ExportEntrepriseData returns every etablissement and entreprise export key
// with its normalized value. A dossier without a linked entreprise yields the
// same keys with empty values.
func ExportEntrepriseData(d Dossier) map[string]string {
	keys := EntrepriseExportKeys()
	values := entrepriseRow(d)

	out := make(map[string]string, len(keys))
	for i, k := range keys {
		out[k] = Normalize(values[i])
	}
	return out
}

// ExportDefaultColumns merges the intrinsic dossier fields with the entreprise
// export data.
func ExportDefaultColumns(d Dossier) map[string]string {
	out := ExportEntrepriseData(d)
	for i, v := range intrinsicRow(d) {
		out[intrinsicExportKeys[i]] = Normalize(v)
	}
	return out
}

// ExportHeaders is the header row shared by every dossier of a procedure.
func ExportHeaders(fields []FieldDef) []string {
	headers := make([]string, 0, len(intrinsicExportKeys)+len(fields)+len(etablissementExportKeys)+len(entrepriseExportKeys))
	headers = append(headers, intrinsicExportKeys...)
	for _, f := range fields {
		headers = append(headers, f.Label)
	}
	return append(headers, EntrepriseExportKeys()...)
}

// RowWidth is the number of cells of every exported row for a field set.
func RowWidth(fieldCount int) int {
	return len(intrinsicExportKeys) + fieldCount + len(etablissementExportKeys) + len(entrepriseExportKeys)
}

func dataWithFields(d Dossier, fields []FieldDef) []any {
	row := make([]any, 0, RowWidth(len(fields)))
	row = append(row, intrinsicRow(d)...)
	for _, f := range fields {
		row = append(row, d.champValue(f.ID))
	}
	return append(row, entrepriseRow(d)...)
}

// DataWithChamps flattens a dossier into typed cells: the intrinsic fields,
// one cell per procedure field in field order, then the entreprise data.
func DataWithChamps(d Dossier) []any {
	return dataWithFields(d, OrderedFields(d.Procedure))
}
