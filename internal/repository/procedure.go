package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProcedurePathTaken = errors.New("procedure path is already used by another procedure")

type ProcedureRepository struct {
	*baseRepository
	preferences *PreferenceRepository
}

func orderByPlace(db *gorm.DB) *gorm.DB {
	return db.Order("order_place")
}

// Create stores a procedure with its field and piece lists. Order places are
// taken from the slice order.
func (pr ProcedureRepository) Create(ctx context.Context, tx *gorm.DB, procedure *model.Procedure) (*model.Procedure, error) {
	pr.logger.Debugf("Create procedure with data: %v \n", procedure)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	for i := range procedure.TypesDeChamp {
		procedure.TypesDeChamp[i].OrderPlace = i
	}
	for i := range procedure.TypesDePieceJustificative {
		procedure.TypesDePieceJustificative[i].OrderPlace = i
	}
	procedure.Published = false
	procedure.Archived = false
	procedure.Path = nil
	procedure.Version = 1

	if err := db.WithContext(ctx).Create(procedure).Error; err != nil {
		return nil, err
	}

	return procedure, nil
}

func (pr ProcedureRepository) GetById(ctx context.Context, tx *gorm.DB, procedureID string) (*model.Procedure, error) {
	pr.logger.Debugf("Get procedure by id: %s \n", procedureID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var procedure model.Procedure
	if err := db.WithContext(ctx).
		Preload("TypesDeChamp", orderByPlace).
		Preload("TypesDePieceJustificative", orderByPlace).
		Preload("Gestionnaires").
		Where("id = ?", procedureID).
		First(&procedure).Error; err != nil {
		return nil, notFound(err, "procedure")
	}

	return &procedure, nil
}

// GetOwned returns the procedure only when it belongs to the administrator.
// Another administrator's procedure reads as not found.
func (pr ProcedureRepository) GetOwned(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string) (*model.Procedure, error) {
	procedure, err := pr.GetById(ctx, tx, procedureID)
	if err != nil {
		return nil, err
	}
	if procedure.AdministrateurID != administrateurID {
		return nil, fmt.Errorf("procedure %s: %w", procedureID, dossier.ErrNotFound)
	}
	return procedure, nil
}

// ProcedureFields lists the fields of a procedure by order place.
func (pr ProcedureRepository) ProcedureFields(ctx context.Context, procedureID string) ([]dossier.FieldDef, error) {
	procedure, err := pr.GetById(ctx, nil, procedureID)
	if err != nil {
		return nil, err
	}
	return dossier.OrderedFields(procedure.ToProcedure()), nil
}

// ListForAdministrateur returns the administrator's procedures, newest first.
func (pr ProcedureRepository) ListForAdministrateur(ctx context.Context, tx *gorm.DB, administrateurID string) ([]model.Procedure, error) {
	pr.logger.Debugf("List procedures of administrateur: %s \n", administrateurID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.Procedure
	if err := db.WithContext(ctx).
		Where("administrateur_id = ?", administrateurID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListForGestionnaire returns the procedures the gestionnaire is assigned to.
func (pr ProcedureRepository) ListForGestionnaire(ctx context.Context, tx *gorm.DB, gestionnaireID string) ([]model.Procedure, error) {
	pr.logger.Debugf("List procedures of gestionnaire: %s \n", gestionnaireID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.Procedure
	if err := db.WithContext(ctx).
		Joins("JOIN assign_tos ON assign_tos.procedure_id = procedures.id").
		Where("assign_tos.gestionnaire_id = ?", gestionnaireID).
		Order("procedures.libelle").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// lockOwned loads the procedure row FOR UPDATE inside tx.
func (pr ProcedureRepository) lockOwned(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string) (*model.Procedure, error) {
	var locked model.Procedure
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", procedureID).
		First(&locked).Error; err != nil {
		return nil, notFound(err, "procedure")
	}
	if locked.AdministrateurID != administrateurID {
		return nil, fmt.Errorf("procedure %s: %w", procedureID, dossier.ErrNotFound)
	}
	return &locked, nil
}

// saveVersioned applies changes only when the row still has the version that
// was read, and bumps it.
func saveVersioned(ctx context.Context, tx *gorm.DB, m any, id string, version int, changes map[string]any) error {
	if changes == nil {
		changes = map[string]any{}
	}
	changes["version"] = gorm.Expr("version + 1")
	changes["updated_at"] = time.Now()

	result := tx.WithContext(ctx).Model(m).
		Where("id = ? AND version = ?", id, version).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dossier.ErrStaleObject
	}
	return nil
}

// Publish opens the procedure to new dossiers under path. An empty path
// falls back to one derived from the label; a derived path that is already
// used gets a random suffix, an explicit one is refused.
func (pr ProcedureRepository) Publish(ctx context.Context, tx *gorm.DB, procedureID, administrateurID, path string) (*model.Procedure, error) {
	pr.logger.Debugf("Publish procedure: %s with path: %s \n", procedureID, path)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		locked, err := pr.lockOwned(ctx, tx, procedureID, administrateurID)
		if err != nil {
			return err
		}

		explicit := path != ""
		if !explicit {
			path = locked.ToProcedure().DefaultPath()
		}
		if path == "" {
			if path, err = util.GenerateLowerNChar(8); err != nil {
				return err
			}
		}

		taken, err := pr.pathTaken(ctx, tx, path, procedureID)
		if err != nil {
			return err
		}
		if taken {
			if explicit {
				return fmt.Errorf("%s: %w", path, ErrProcedurePathTaken)
			}
			suffix, err := util.GenerateLowerNChar(6)
			if err != nil {
				return err
			}
			path = path + "_" + suffix
		}

		return saveVersioned(ctx, tx, &model.Procedure{}, locked.ID, locked.Version, map[string]any{
			"published": true,
			"archived":  false,
			"path":      path,
		})
	})
	if err != nil {
		return nil, err
	}

	return pr.GetById(ctx, tx, procedureID)
}

func (pr ProcedureRepository) pathTaken(ctx context.Context, tx *gorm.DB, path, exceptID string) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&model.Procedure{}).
		Where("path = ? AND id <> ?", path, exceptID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByPath returns the procedure published under path.
func (pr ProcedureRepository) GetByPath(ctx context.Context, tx *gorm.DB, path string) (*model.Procedure, error) {
	pr.logger.Debugf("Get procedure by path: %s \n", path)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var procedure model.Procedure
	if err := db.WithContext(ctx).Where("path = ?", path).First(&procedure).Error; err != nil {
		return nil, notFound(err, "procedure")
	}
	return &procedure, nil
}

// Archive closes the procedure to new dossiers. Existing dossiers go on.
func (pr ProcedureRepository) Archive(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string) error {
	pr.logger.Debugf("Archive procedure: %s \n", procedureID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		locked, err := pr.lockOwned(ctx, tx, procedureID, administrateurID)
		if err != nil {
			return err
		}
		return saveVersioned(ctx, tx, &model.Procedure{}, locked.ID, locked.Version, map[string]any{"archived": true})
	})
}

// Clone copies the procedure with its field and piece lists into a new
// unpublished procedure owned by administrateurID.
func (pr ProcedureRepository) Clone(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string) (*model.Procedure, error) {
	pr.logger.Debugf("Clone procedure: %s \n", procedureID)

	source, err := pr.GetOwned(ctx, tx, procedureID, administrateurID)
	if err != nil {
		return nil, err
	}

	clone := &model.Procedure{
		Libelle:          source.Libelle,
		Description:      source.Description,
		Organisation:     source.Organisation,
		ForIndividual:    source.ForIndividual,
		CerfaFlag:        source.CerfaFlag,
		AdministrateurID: administrateurID,
	}
	for _, tdc := range source.TypesDeChamp {
		clone.TypesDeChamp = append(clone.TypesDeChamp, model.TypeDeChamp{
			Libelle:     tdc.Libelle,
			TypeChamp:   tdc.TypeChamp,
			Description: tdc.Description,
			Mandatory:   tdc.Mandatory,
		})
	}
	for _, tdpj := range source.TypesDePieceJustificative {
		clone.TypesDePieceJustificative = append(clone.TypesDePieceJustificative, model.TypeDePieceJustificative{
			Libelle:     tdpj.Libelle,
			Description: tdpj.Description,
			Mandatory:   tdpj.Mandatory,
		})
	}

	return pr.Create(ctx, tx, clone)
}

// TotalDossier counts the dossiers past draft.
func (pr ProcedureRepository) TotalDossier(ctx context.Context, tx *gorm.DB, procedureID string) (int64, error) {
	pr.logger.Debugf("Count dossiers of procedure: %s \n", procedureID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var total int64
	if err := db.WithContext(ctx).Model(&model.Dossier{}).
		Where("procedure_id = ? AND state <> ?", procedureID, dossier.StateDraft).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MoveTypeDeChampDown swaps the field at index with the next one. It reports
// false, with nothing written, when there is no next field.
func (pr ProcedureRepository) MoveTypeDeChampDown(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string, index int) (bool, error) {
	pr.logger.Debugf("Move type de champ down: procedure %s index %d \n", procedureID, index)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	moved := false
	err := pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		locked, err := pr.lockUnlocked(ctx, tx, procedureID, administrateurID)
		if err != nil {
			return err
		}

		var rows []model.TypeDeChamp
		if err := tx.WithContext(ctx).Where("procedure_id = ?", procedureID).Order("order_place").Find(&rows).Error; err != nil {
			return err
		}

		defs := make([]*dossier.FieldDef, len(rows))
		before := make(map[string]int, len(rows))
		for i, r := range rows {
			def := r.ToFieldDef()
			defs[i] = &def
			before[r.ID] = r.OrderPlace
		}

		if !dossier.ReorderAdjacent(defs, index) {
			return nil
		}
		for _, def := range defs {
			if before[def.ID] == def.Order {
				continue
			}
			if err := tx.WithContext(ctx).Model(&model.TypeDeChamp{}).Where("id = ?", def.ID).Update("order_place", def.Order).Error; err != nil {
				return err
			}
		}

		moved = true
		return saveVersioned(ctx, tx, &model.Procedure{}, locked.ID, locked.Version, nil)
	})

	return moved, err
}

// MoveTypeDePieceJustificativeDown is MoveTypeDeChampDown for the piece list.
func (pr ProcedureRepository) MoveTypeDePieceJustificativeDown(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string, index int) (bool, error) {
	pr.logger.Debugf("Move type de piece justificative down: procedure %s index %d \n", procedureID, index)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	moved := false
	err := pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		locked, err := pr.lockUnlocked(ctx, tx, procedureID, administrateurID)
		if err != nil {
			return err
		}

		var rows []model.TypeDePieceJustificative
		if err := tx.WithContext(ctx).Where("procedure_id = ?", procedureID).Order("order_place").Find(&rows).Error; err != nil {
			return err
		}

		defs := make([]*dossier.PieceTypeDef, len(rows))
		before := make(map[string]int, len(rows))
		for i, r := range rows {
			def := r.ToPieceTypeDef()
			defs[i] = &def
			before[r.ID] = r.OrderPlace
		}

		if !dossier.ReorderAdjacent(defs, index) {
			return nil
		}
		for _, def := range defs {
			if before[def.ID] == def.Order {
				continue
			}
			if err := tx.WithContext(ctx).Model(&model.TypeDePieceJustificative{}).Where("id = ?", def.ID).Update("order_place", def.Order).Error; err != nil {
				return err
			}
		}

		moved = true
		return saveVersioned(ctx, tx, &model.Procedure{}, locked.ID, locked.Version, nil)
	})

	return moved, err
}

func (pr ProcedureRepository) lockUnlocked(ctx context.Context, tx *gorm.DB, procedureID, administrateurID string) (*model.Procedure, error) {
	locked, err := pr.lockOwned(ctx, tx, procedureID, administrateurID)
	if err != nil {
		return nil, err
	}
	if locked.ToProcedure().Locked() {
		return nil, dossier.ErrProcedureLocked
	}
	return locked, nil
}

type AssignmentChange string

const (
	Assign   AssignmentChange = "assign"
	Unassign AssignmentChange = "unassign"
)

// ChangeAssignment assigns or unassigns a gestionnaire. A new assignment
// also seeds the gestionnaire's default listing columns for the procedure.
func (pr ProcedureRepository) ChangeAssignment(ctx context.Context, tx *gorm.DB, procedureID, administrateurID, gestionnaireID string, to AssignmentChange) error {
	pr.logger.Debugf("Change assignment of gestionnaire %s on procedure %s to %s \n", gestionnaireID, procedureID, to)

	if to != Assign && to != Unassign {
		return fmt.Errorf("unknown assignment change %q", to)
	}

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return pr.withTx(pr.getDB(tx), func(tx *gorm.DB) error {
		if _, err := pr.lockOwned(ctx, tx, procedureID, administrateurID); err != nil {
			return err
		}

		var g model.Gestionnaire
		if err := tx.WithContext(ctx).Where("id = ?", gestionnaireID).First(&g).Error; err != nil {
			return notFound(err, "gestionnaire")
		}

		row := model.AssignTo{GestionnaireID: gestionnaireID, ProcedureID: procedureID}
		if to == Unassign {
			return tx.WithContext(ctx).Where(&row).Delete(&model.AssignTo{}).Error
		}

		result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return pr.preferences.EnsureDefaults(ctx, tx, gestionnaireID, &procedureID)
	})
}
