package dossier

import (
	"context"
	"errors"
	"sort"
)

const (
	GroupDossier = "dossier"
	GroupUser    = "user"
	GroupChamps  = "champs"
)

const fieldColumnPrefix = "field_"

// ColumnDef describes one column a listing or an export can show.
type ColumnDef struct {
	Label        string `json:"libelle"`
	Table        string `json:"table"`
	Attr         string `json:"attr"`
	AttrDecorate string `json:"attrDecorate"`
	Width        int    `json:"width"`
	Sortable     bool   `json:"sortable"`
	Filterable   bool   `json:"filterable"`
}

// Columns maps a group name to its columns keyed by column key.
type Columns map[string]map[string]ColumnDef

// FieldColumnKey is the stable column key of a custom field.
func FieldColumnKey(fieldID string) string {
	return fieldColumnPrefix + fieldID
}

func dossierColumns() map[string]ColumnDef {
	return map[string]ColumnDef{
		"dossier_id": {Label: "N°", Attr: "id", AttrDecorate: "id", Width: 1, Sortable: true, Filterable: true},
		"created_at": {Label: "Créé le", Attr: "created_at", AttrDecorate: "first_creation", Width: 2, Sortable: true},
		"updated_at": {Label: "Mise à jour le", Attr: "updated_at", AttrDecorate: "last_update", Width: 2, Sortable: true},
	}
}

func userColumns() map[string]ColumnDef {
	return map[string]ColumnDef{
		"email": {Label: "Email", Table: "user", Attr: "email", AttrDecorate: "email", Width: 2, Sortable: true, Filterable: true},
	}
}

// FieldColumns builds one column per list-eligible field.
func FieldColumns(fields []FieldDef) map[string]ColumnDef {
	cols := make(map[string]ColumnDef)
	for _, f := range fields {
		if !f.ListEligible {
			continue
		}
		cols[FieldColumnKey(f.ID)] = ColumnDef{
			Label:        f.Label,
			Table:        GroupChamps,
			Attr:         f.ID,
			AttrDecorate: "value",
			Width:        2,
			Filterable:   true,
		}
	}
	return cols
}

// AvailableColumns returns the generic column groups, plus the champs group
// built from fields when withProcedure is set.
func AvailableColumns(fields []FieldDef, withProcedure bool) Columns {
	cols := Columns{
		GroupDossier: dossierColumns(),
		GroupUser:    userColumns(),
	}
	if withProcedure {
		cols[GroupChamps] = FieldColumns(fields)
	}
	return cols
}

// FieldSource loads the field definitions of a procedure. It returns an error
// wrapping ErrNotFound for an unknown procedure.
type FieldSource interface {
	ProcedureFields(ctx context.Context, procedureID string) ([]FieldDef, error)
}

type ColumnRegistry struct {
	source FieldSource
}

func NewColumnRegistry(source FieldSource) *ColumnRegistry {
	return &ColumnRegistry{source: source}
}

// AvailableColumns resolves the column groups for an optional procedure.
// An unknown procedure yields an empty champs group.
func (r *ColumnRegistry) AvailableColumns(ctx context.Context, procedureID *string) (Columns, error) {
	if procedureID == nil {
		return AvailableColumns(nil, false), nil
	}

	fields, err := r.source.ProcedureFields(ctx, *procedureID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AvailableColumns(nil, true), nil
		}
		return nil, err
	}

	return AvailableColumns(fields, true), nil
}

// Lookup returns the column for a stored (group, key) preference.
func (c Columns) Lookup(group, key string) (ColumnDef, bool) {
	g, ok := c[group]
	if !ok {
		return ColumnDef{}, false
	}
	col, ok := g[key]
	return col, ok
}

// Keys returns the column keys of every group.
func (c Columns) Keys() map[string][]string {
	out := make(map[string][]string, len(c))
	for group, cols := range c {
		keys := make([]string, 0, len(cols))
		for k := range cols {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out[group] = keys
	}
	return out
}
