package repository

import (
	"errors"
	"fmt"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	s3     *minio.Client
}

type Repository struct {
	// DB can be used for transaction. Pass a tx to any repository function to
	// run it inside the caller's transaction.
	DB                 *gorm.DB
	User               *UserRepository
	Gestionnaire       *GestionnaireRepository
	Administrateur     *AdministrateurRepository
	Procedure          *ProcedureRepository
	Dossier            *DossierRepository
	Commentaire        *CommentaireRepository
	PieceJustificative *PieceJustificativeRepository
	Preference         *PreferenceRepository
	File               *FileRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *baseRepository {
	return &baseRepository{db: db, logger: logger, s3: s3}
}

// NewRepository wires every repository on the same connection. s3 may be nil
// when the caller never touches stored files.
func NewRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *Repository {
	br := newBaseRepository(db, logger, s3)
	_procedureRepo := &ProcedureRepository{baseRepository: br}
	_preferenceRepo := &PreferenceRepository{baseRepository: br, procedures: _procedureRepo}
	_procedureRepo.preferences = _preferenceRepo

	return &Repository{
		DB:                 db,
		User:               &UserRepository{baseRepository: br},
		Gestionnaire:       &GestionnaireRepository{baseRepository: br},
		Administrateur:     &AdministrateurRepository{baseRepository: br},
		Procedure:          _procedureRepo,
		Dossier:            &DossierRepository{baseRepository: br},
		Commentaire:        &CommentaireRepository{baseRepository: br},
		PieceJustificative: &PieceJustificativeRepository{baseRepository: br},
		Preference:         _preferenceRepo,
		File:               &FileRepository{baseRepository: br},
	}
}

// GORM already wraps single writes in a transaction, so this is only needed
// when several statements must commit together.
// Docs: https://gorm.io/docs/transactions.html
func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Debugf("withTx transaction rolled back: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}

// notFound maps gorm's missing record error onto the domain one.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, dossier.ErrNotFound)
	}
	return err
}
