package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/database"
	filestorage "github.com/SeakMengs/DossierFlow/internal/file_storage"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Env is what a command needs from the outside world.
type Env struct {
	Config     config.Config
	Logger     *zap.SugaredLogger
	Repository *repository.Repository
	S3         *minio.Client
}

// Opener builds an Env and a function releasing it.
type Opener func() (*Env, func(), error)

// Connect opens the configured database and bucket.
func Connect() (*Env, func(), error) {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		_ = sqlDb.Close()
		return nil, nil, fmt.Errorf("failed to connect to minio: %w", err)
	}

	env := &Env{
		Config:     cfg,
		Logger:     logger,
		Repository: repository.NewRepository(db, logger, s3),
		S3:         s3,
	}
	return env, func() { _ = sqlDb.Close() }, nil
}

// findProcedure accepts either a procedure id or its published path.
func findProcedure(ctx context.Context, repo *repository.Repository, ref string) (*model.Procedure, error) {
	p, err := repo.Procedure.GetById(ctx, nil, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, dossier.ErrNotFound) {
		return nil, err
	}

	p, err = repo.Procedure.GetByPath(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("procedure %q: %w", ref, err)
	}
	// GetByPath does not load the field definitions
	return repo.Procedure.GetById(ctx, nil, p.ID)
}
