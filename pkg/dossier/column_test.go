package dossier

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type fakeFieldSource map[string][]FieldDef

func (f fakeFieldSource) ProcedureFields(_ context.Context, procedureID string) ([]FieldDef, error) {
	fields, ok := f[procedureID]
	if !ok {
		return nil, fmt.Errorf("procedure %s: %w", procedureID, ErrNotFound)
	}
	return fields, nil
}

type failingFieldSource struct{ err error }

func (f failingFieldSource) ProcedureFields(context.Context, string) ([]FieldDef, error) {
	return nil, f.err
}

func strPtr(s string) *string { return &s }

func TestColumnRegistryAvailableColumns(t *testing.T) {
	source := fakeFieldSource{
		"p1": {
			{ID: "10", Label: "Nom du projet", ListEligible: true},
			{ID: "11", Label: "Budget", ListEligible: true},
			{ID: "12", Label: "Header", ListEligible: false},
		},
		"empty": {},
	}
	registry := NewColumnRegistry(source)

	tests := []struct {
		name        string
		procedureID *string
		wantGroups  []string
		wantChamps  []string
	}{
		{"no procedure", nil, []string{GroupDossier, GroupUser}, nil},
		{"procedure with fields", strPtr("p1"), []string{GroupChamps, GroupDossier, GroupUser}, []string{"field_10", "field_11"}},
		{"procedure without fields", strPtr("empty"), []string{GroupChamps, GroupDossier, GroupUser}, []string{}},
		{"unknown procedure", strPtr("missing"), []string{GroupChamps, GroupDossier, GroupUser}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := registry.AvailableColumns(context.Background(), tt.procedureID)
			if err != nil {
				t.Fatalf("AvailableColumns() unexpected error: %v", err)
			}

			keys := cols.Keys()
			groups := make([]string, 0, len(keys))
			for g := range keys {
				groups = append(groups, g)
			}
			if len(groups) != len(tt.wantGroups) {
				t.Fatalf("groups = %v, want %v", groups, tt.wantGroups)
			}
			for _, g := range tt.wantGroups {
				if _, ok := keys[g]; !ok {
					t.Errorf("missing group %q", g)
				}
			}

			if tt.wantChamps != nil && !reflect.DeepEqual(keys[GroupChamps], tt.wantChamps) {
				t.Errorf("champs keys = %v, want %v", keys[GroupChamps], tt.wantChamps)
			}
			if !reflect.DeepEqual(keys[GroupDossier], []string{"created_at", "dossier_id", "updated_at"}) {
				t.Errorf("dossier keys = %v", keys[GroupDossier])
			}
			if !reflect.DeepEqual(keys[GroupUser], []string{"email"}) {
				t.Errorf("user keys = %v", keys[GroupUser])
			}
		})
	}
}

func TestColumnRegistryIsDeterministic(t *testing.T) {
	registry := NewColumnRegistry(fakeFieldSource{
		"p1": {{ID: "1", Label: "A", ListEligible: true}, {ID: "2", Label: "B", ListEligible: true}},
	})

	first, err := registry.AvailableColumns(context.Background(), strPtr("p1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := registry.AvailableColumns(context.Background(), strPtr("p1"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("AvailableColumns() not deterministic:\n%v\n%v", first, second)
	}
}

func TestColumnRegistryPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("connection refused")
	registry := NewColumnRegistry(failingFieldSource{err: boom})

	if _, err := registry.AvailableColumns(context.Background(), strPtr("p1")); !errors.Is(err, boom) {
		t.Errorf("AvailableColumns() error = %v, want %v", err, boom)
	}
}

func TestFieldColumnsDescribeField(t *testing.T) {
	cols := FieldColumns([]FieldDef{{ID: "42", Label: "Montant", ListEligible: true}})
	col, ok := cols["field_42"]
	if !ok {
		t.Fatalf("missing field_42 in %v", cols)
	}
	if col.Label != "Montant" || col.Table != GroupChamps || col.Attr != "42" {
		t.Errorf("unexpected column %+v", col)
	}
}

func TestResolvePreferences(t *testing.T) {
	cols := AvailableColumns([]FieldDef{{ID: "1", Label: "A", ListEligible: true}}, true)

	prefs := []Preference{
		{Group: GroupDossier, Key: "dossier_id", Order: SortDesc, Filter: "12"},
		{Group: GroupDossier, Key: "created_at", Order: SortAsc, Filter: "2017"},
		{Group: GroupChamps, Key: "field_1", Order: SortAsc, Filter: "foo"},
		{Group: GroupChamps, Key: "field_99"},
		{Group: "procedure", Key: "libelle"},
	}

	got := ResolvePreferences(prefs, cols)
	if len(got) != 3 {
		t.Fatalf("ResolvePreferences() kept %d columns, want 3: %+v", len(got), got)
	}

	if got[0].Order != SortDesc || got[0].Filter != "12" {
		t.Errorf("dossier_id lost sort or filter: %+v", got[0].Preference)
	}
	if got[1].Order != SortAsc || got[1].Filter != "" {
		t.Errorf("created_at should keep sort and drop filter: %+v", got[1].Preference)
	}
	if got[2].Order != SortNone || got[2].Filter != "foo" {
		t.Errorf("field_1 should drop sort and keep filter: %+v", got[2].Preference)
	}
}

func TestDefaultPreferencesResolve(t *testing.T) {
	got := ResolvePreferences(DefaultPreferences(), AvailableColumns(nil, false))
	if len(got) != len(DefaultPreferences()) {
		t.Errorf("default preferences should all resolve, got %d", len(got))
	}
}
