package dossier

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Preference is a column a gestionnaire chose to display for a procedure.
type Preference struct {
	Group  string
	Key    string
	Order  SortOrder
	Filter string
}

type ResolvedColumn struct {
	Preference
	Column ColumnDef
}

// DefaultPreferences is the column set given to a gestionnaire newly
// assigned to a procedure.
func DefaultPreferences() []Preference {
	return []Preference{
		{Group: GroupDossier, Key: "dossier_id"},
		{Group: GroupDossier, Key: "created_at"},
		{Group: GroupDossier, Key: "updated_at"},
		{Group: GroupUser, Key: "email"},
	}
}

// ResolvePreferences keeps the preferences whose column still exists.
// A preference pointing at a deleted field is skipped. Sort orders and
// filters are dropped when the column does not support them.
func ResolvePreferences(prefs []Preference, cols Columns) []ResolvedColumn {
	out := make([]ResolvedColumn, 0, len(prefs))
	for _, p := range prefs {
		col, ok := cols.Lookup(p.Group, p.Key)
		if !ok {
			continue
		}
		if !col.Sortable {
			p.Order = SortNone
		}
		if !col.Filterable {
			p.Filter = ""
		}
		out = append(out, ResolvedColumn{Preference: p, Column: col})
	}
	return out
}
