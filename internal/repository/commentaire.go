package repository

import (
	"context"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"gorm.io/gorm"
)

type CommentaireRepository struct {
	*baseRepository
}

// ListForDossier returns the dossier's comments oldest first. A champ id
// keeps only the comments scoped to that champ.
func (cr CommentaireRepository) ListForDossier(ctx context.Context, tx *gorm.DB, dossierID string, champID *string) ([]model.Commentaire, error) {
	cr.logger.Debugf("List commentaires of dossier: %s \n", dossierID)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).
		Preload("PieceJustificative.File").
		Where("dossier_id = ?", dossierID)
	if champID != nil {
		query = query.Where("champ_id = ?", *champID)
	}

	var out []model.Commentaire
	if err := query.Order("created_at").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type PieceJustificativeRepository struct {
	*baseRepository
}

// ListForDossier returns the typed pieces of the dossier, oldest first.
// Pieces sent with a comment are listed with their comment instead.
func (pr PieceJustificativeRepository) ListForDossier(ctx context.Context, tx *gorm.DB, dossierID string) ([]model.PieceJustificative, error) {
	pr.logger.Debugf("List pieces justificatives of dossier: %s \n", dossierID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.PieceJustificative
	if err := db.WithContext(ctx).
		Preload("File").
		Where("dossier_id = ? AND type_de_piece_justificative_id IS NOT NULL", dossierID).
		Order("created_at").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetById returns one piece of the dossier with its file.
func (pr PieceJustificativeRepository) GetById(ctx context.Context, tx *gorm.DB, dossierID, pieceID string) (*model.PieceJustificative, error) {
	pr.logger.Debugf("Get piece justificative %s of dossier: %s \n", pieceID, dossierID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var pj model.PieceJustificative
	if err := db.WithContext(ctx).
		Preload("File").
		Where("id = ? AND dossier_id = ?", pieceID, dossierID).
		First(&pj).Error; err != nil {
		return nil, notFound(err, "piece justificative")
	}
	return &pj, nil
}
