package repository

import (
	"context"

	constant "github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"gorm.io/gorm"
)

type FileRepository struct {
	*baseRepository
}

func (fr FileRepository) Create(ctx context.Context, tx *gorm.DB, file *model.File) (*model.File, error) {
	fr.logger.Debugf("Create file with data: %v \n", file)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}

	return file, nil
}

func (fr FileRepository) GetById(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error) {
	fr.logger.Debugf("Get file by id: %s \n", fileID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var file model.File
	if err := db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error; err != nil {
		return nil, notFound(err, "file")
	}

	return &file, nil
}

// Delete removes the row, then the stored object when a bucket client is
// configured. A failing object removal is logged only.
func (fr FileRepository) Delete(ctx context.Context, tx *gorm.DB, file model.File) error {
	fr.logger.Debugf("Delete file with fileID: %s \n", file.ID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("id = ?", file.ID).Delete(&model.File{}).Error; err != nil {
		return err
	}

	fr.removeObjects(ctx, []model.File{file})
	return nil
}

func (b baseRepository) removeObjects(ctx context.Context, files []model.File) {
	if b.s3 == nil {
		return
	}
	for _, f := range files {
		if err := f.Delete(ctx, b.s3); err != nil {
			b.logger.Errorf("Failed to remove object %s from bucket %s: %v", f.UniqueFileName, f.BucketName, err)
		}
	}
}
