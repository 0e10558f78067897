package filestorage

import (
	"context"
	"fmt"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient returns nil without error when no endpoint is configured,
// which disables attachments and export archiving.
func NewMinioClient(cfg *config.MinioConfig) (*minio.Client, error) {
	if cfg.ENDPOINT == "" {
		return nil, nil
	}

	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

// EnsureBucket creates the bucket on startup so the first upload does not
// race on its creation.
func EnsureBucket(ctx context.Context, s3 *minio.Client, bucket string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s3.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}

	if err := s3.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}
