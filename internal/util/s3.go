package util

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

func GetDossierDirectoryPath(dossierID string) string {
	return fmt.Sprintf("dossiers/%s", dossierID)
}

// GetPieceJustificativeDirectoryPath keys attachments by dossier and piece
// type. Attachments sent with a comment go under "commentaires".
func GetPieceJustificativeDirectoryPath(dossierID string, typeID *string) string {
	if typeID == nil {
		return GetDossierDirectoryPath(dossierID) + "/commentaires"
	}
	return fmt.Sprintf("%s/%s", GetDossierDirectoryPath(dossierID), *typeID)
}

func GetCerfaDirectoryPath(dossierID string) string {
	return GetDossierDirectoryPath(dossierID) + "/cerfa"
}

func GetExportDirectoryPath(procedureID string) string {
	return fmt.Sprintf("procedures/%s/exports", procedureID)
}

func createBucketIfNotExists(ctx context.Context, s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Add a prefix to the file name
	// For example, if the file name is "kbis.pdf" and the prefix is "dossiers/123/456",
	// the resulting name will be "dossiers/123/456/kbis.pdf"
	DirectoryPath string
	UniquePrefix  bool
	Bucket        string
	S3            *minio.Client
}

func UploadFileToS3ByFileHeader(ctx context.Context, fileHeader *multipart.FileHeader, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return UploadFileToS3(ctx, file, fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"), fuo)
}

// UploadFileToS3 streams r into the bucket. size may be -1 when unknown.
func UploadFileToS3(ctx context.Context, r io.Reader, filename string, size int64, contentType string, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := createBucketIfNotExists(ctx, fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	info, err := fuo.S3.PutObject(
		ctx,
		fuo.Bucket,
		prepareFileName(filename, fuo),
		r,
		size,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

// Generates the final file name with uniqueness and prefix
func prepareFileName(originalName string, fuo *FileUploadOptions) string {
	fileName := filepath.Base(originalName)

	if fuo != nil {
		if fuo.UniquePrefix {
			fileName = AddUniquePrefixToFileName(fileName)
		}

		if fuo.DirectoryPath != "" {
			fileName = filepath.Join(fuo.DirectoryPath, fileName)
		}
	}

	return fileName
}
