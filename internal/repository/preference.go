package repository

import (
	"context"
	"fmt"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"gorm.io/gorm"
)

type PreferenceRepository struct {
	*baseRepository
	procedures *ProcedureRepository
}

func scopeProcedure(db *gorm.DB, procedureID *string) *gorm.DB {
	if procedureID == nil {
		return db.Where("procedure_id IS NULL")
	}
	return db.Where("procedure_id = ?", *procedureID)
}

// Columns returns the listing columns available for an optional procedure.
func (pr PreferenceRepository) Columns(ctx context.Context, procedureID *string) (dossier.Columns, error) {
	return dossier.NewColumnRegistry(pr.procedures).AvailableColumns(ctx, procedureID)
}

// List returns the stored preferences by position.
func (pr PreferenceRepository) List(ctx context.Context, tx *gorm.DB, gestionnaireID string, procedureID *string) ([]model.PreferenceListDossier, error) {
	pr.logger.Debugf("List preferences of gestionnaire: %s \n", gestionnaireID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.PreferenceListDossier
	if err := scopeProcedure(db.WithContext(ctx), procedureID).
		Where("gestionnaire_id = ?", gestionnaireID).
		Order("position").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve returns the gestionnaire's listing columns. Without stored
// preferences the default column set is used, and preferences pointing at a
// column that no longer exists are skipped.
func (pr PreferenceRepository) Resolve(ctx context.Context, gestionnaireID string, procedureID *string) ([]dossier.ResolvedColumn, error) {
	cols, err := pr.Columns(ctx, procedureID)
	if err != nil {
		return nil, err
	}

	stored, err := pr.List(ctx, nil, gestionnaireID, procedureID)
	if err != nil {
		return nil, err
	}

	prefs := dossier.DefaultPreferences()
	if len(stored) > 0 {
		prefs = make([]dossier.Preference, 0, len(stored))
		for _, p := range stored {
			prefs = append(prefs, p.ToPreference())
		}
	}

	return dossier.ResolvePreferences(prefs, cols), nil
}

// Replace stores a new column set. Every preference must name an available
// column.
func (pr PreferenceRepository) Replace(ctx context.Context, tx *gorm.DB, gestionnaireID string, procedureID *string, prefs []dossier.Preference) error {
	pr.logger.Debugf("Replace preferences of gestionnaire: %s with: %v \n", gestionnaireID, prefs)

	cols, err := pr.Columns(ctx, procedureID)
	if err != nil {
		return err
	}
	for _, p := range prefs {
		if _, ok := cols.Lookup(p.Group, p.Key); !ok {
			return fmt.Errorf("column %s.%s: %w", p.Group, p.Key, dossier.ErrNotFound)
		}
		if p.Order != dossier.SortNone && p.Order != dossier.SortAsc && p.Order != dossier.SortDesc {
			return fmt.Errorf("unknown sort order %q", p.Order)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		if err := scopeProcedure(tx.WithContext(ctx), procedureID).
			Where("gestionnaire_id = ?", gestionnaireID).
			Delete(&model.PreferenceListDossier{}).Error; err != nil {
			return err
		}
		return pr.insert(ctx, tx, gestionnaireID, procedureID, prefs)
	})
}

// EnsureDefaults seeds the default columns when the gestionnaire has none
// for the procedure.
func (pr PreferenceRepository) EnsureDefaults(ctx context.Context, tx *gorm.DB, gestionnaireID string, procedureID *string) error {
	pr.logger.Debugf("Ensure default preferences of gestionnaire: %s \n", gestionnaireID)

	db := pr.getDB(tx)
	var count int64
	if err := scopeProcedure(db.WithContext(ctx).Model(&model.PreferenceListDossier{}), procedureID).
		Where("gestionnaire_id = ?", gestionnaireID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return pr.insert(ctx, db, gestionnaireID, procedureID, dossier.DefaultPreferences())
}

func (pr PreferenceRepository) insert(ctx context.Context, db *gorm.DB, gestionnaireID string, procedureID *string, prefs []dossier.Preference) error {
	if len(prefs) == 0 {
		return nil
	}
	rows := make([]model.PreferenceListDossier, len(prefs))
	for i, p := range prefs {
		rows[i] = model.PreferenceListDossier{
			GestionnaireID: gestionnaireID,
			ProcedureID:    procedureID,
			Table:          p.Group,
			Attr:           p.Key,
			Order:          p.Order,
			Filter:         p.Filter,
			Position:       i,
		}
	}
	return db.WithContext(ctx).Create(&rows).Error
}
