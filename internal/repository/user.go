package repository

import (
	"context"
	"errors"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"gorm.io/gorm"
)

type UserRepository struct {
	*baseRepository
}

func (ur UserRepository) GetById(ctx context.Context, tx *gorm.DB, userId string) (*model.User, error) {
	ur.logger.Debugf("Get user by id: %s \n", userId)

	db := ur.getDB(tx)
	var user model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("id = ?", userId).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}

	return &user, nil
}

func (ur UserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	ur.logger.Debugf("Get user by email: %s \n", email)

	db := ur.getDB(tx)
	var user model.User

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}

	return &user, nil
}

func (ur UserRepository) Create(ctx context.Context, tx *gorm.DB, newUser *model.User) (*model.User, error) {
	ur.logger.Debugf("Create user with data: %v \n", newUser)

	db := ur.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Create(newUser).Error; err != nil {
		return nil, err
	}

	return newUser, nil
}

// FirstOrCreateByEmail returns the user with that email, creating it when
// missing.
func (ur UserRepository) FirstOrCreateByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	ur.logger.Debugf("First or create user by email: %s \n", email)

	var user *model.User
	err := ur.withTx(ur.getDB(tx), func(tx *gorm.DB) error {
		existing, err := ur.GetByEmail(ctx, tx, email)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, dossier.ErrNotFound) {
			return err
		}

		user, err = ur.Create(ctx, tx, &model.User{Email: email})
		return err
	})

	return user, err
}

type GestionnaireRepository struct {
	*baseRepository
}

func (gr GestionnaireRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Gestionnaire, error) {
	gr.logger.Debugf("Get gestionnaire by id: %s \n", id)

	db := gr.getDB(tx)
	var g model.Gestionnaire

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, notFound(err, "gestionnaire")
	}

	return &g, nil
}

func (gr GestionnaireRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Gestionnaire, error) {
	gr.logger.Debugf("Get gestionnaire by email: %s \n", email)

	db := gr.getDB(tx)
	var g model.Gestionnaire

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&g).Error; err != nil {
		return nil, notFound(err, "gestionnaire")
	}

	return &g, nil
}

func (gr GestionnaireRepository) Create(ctx context.Context, tx *gorm.DB, g *model.Gestionnaire) (*model.Gestionnaire, error) {
	gr.logger.Debugf("Create gestionnaire with data: %v \n", g)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}

	return g, nil
}

// ListByProcedure returns the gestionnaires assigned to a procedure.
func (gr GestionnaireRepository) ListByProcedure(ctx context.Context, tx *gorm.DB, procedureID string) ([]model.Gestionnaire, error) {
	gr.logger.Debugf("List gestionnaires of procedure: %s \n", procedureID)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var out []model.Gestionnaire
	if err := db.WithContext(ctx).
		Joins("JOIN assign_tos ON assign_tos.gestionnaire_id = gestionnaires.id").
		Where("assign_tos.procedure_id = ?", procedureID).
		Order("gestionnaires.email").
		Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

type AdministrateurRepository struct {
	*baseRepository
}

func (ar AdministrateurRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Administrateur, error) {
	ar.logger.Debugf("Get administrateur by id: %s \n", id)

	db := ar.getDB(tx)
	var a model.Administrateur

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err, "administrateur")
	}

	return &a, nil
}

func (ar AdministrateurRepository) Create(ctx context.Context, tx *gorm.DB, a *model.Administrateur) (*model.Administrateur, error) {
	ar.logger.Debugf("Create administrateur with data: %v \n", a)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}

	return a, nil
}
