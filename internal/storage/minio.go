package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioUploader загрузка в MinIO/S3
type MinioUploader struct {
	client *minio.Client
}

// NewMinioUploader создает клиента MinIO
func NewMinioUploader(endpoint, accessKey, secretKey string, secure bool) (*MinioUploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioUploader{client: client}, nil
}

// EnsureBucket создает бакет, если его нет
func (u *MinioUploader) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := u.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// PutObject загружает данные в бакет
func (u *MinioUploader) PutObject(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	_, err := u.client.PutObject(
		ctx,
		bucket,
		object,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}
