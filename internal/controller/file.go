package controller

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/minio/minio-go/v7"
)

var errStorageDisabled = errors.New("file storage is not configured")

// upload stores the multipart file under directory and returns the file row
// to persist with the attachment.
func (b *baseController) upload(ctx context.Context, fileHeader *multipart.FileHeader, directory string) (*model.File, error) {
	if b.app.S3 == nil {
		return nil, errStorageDisabled
	}

	info, err := util.UploadFileToS3ByFileHeader(ctx, fileHeader, &util.FileUploadOptions{
		DirectoryPath: directory,
		UniquePrefix:  true,
		Bucket:        b.app.Config.Minio.BUCKET,
		S3:            b.app.S3,
	})
	if err != nil {
		return nil, err
	}

	return &model.File{
		FileName:       fileHeader.Filename,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Size:           info.Size,
	}, nil
}

// discard removes an object whose row could not be written.
func (b *baseController) discard(ctx context.Context, file *model.File) {
	if b.app.S3 == nil || file == nil {
		return
	}
	if err := b.app.S3.RemoveObject(ctx, file.BucketName, file.UniqueFileName, minio.RemoveObjectOptions{}); err != nil {
		b.app.Logger.Errorw("Failed to remove orphan object", "error", err, "key", file.UniqueFileName)
	}
}
