package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "application/octet-stream"

// s3Client is the subset of the MinIO client the store needs; narrowed so
// tests can substitute a fake.
type s3Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// S3Store keeps uploads in an S3-compatible bucket.  Selected with
// UPLOAD_DRIVER=s3; in that deployment the bucket is fronted by a CDN or
// proxy serving the /uploads/ prefix.
type S3Store struct {
	bucket string
	client s3Client
}

func NewS3Store(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create s3 client: %w", err)
	}
	return &S3Store{bucket: bucket, client: client}, nil
}

func (s *S3Store) Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s.client.PutObject(ctx, s.bucket, relPath, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return relPath, nil
}

func (s *S3Store) Delete(ctx context.Context, relPath string) error {
	// RemoveObject on a missing key succeeds, which matches the contract.
	return s.client.RemoveObject(ctx, s.bucket, relPath, minio.RemoveObjectOptions{})
}
