package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sportsadmin.backend/internal/config"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/pkg/utils"
)

const metaFileName = "File-Name"

// objectClient is the slice of the MinIO API the store uses
type objectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) error
	StatObject(ctx context.Context, bucket, name string) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	PresignedGetObject(ctx context.Context, bucket, name string, expiry time.Duration, params url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucket, name string) error
}

type minioClient struct {
	client *minio.Client
}

func (m minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return m.client.BucketExists(ctx, bucket)
}

func (m minioClient) MakeBucket(ctx context.Context, bucket string) error {
	return m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (m minioClient) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) error {
	_, err := m.client.PutObject(ctx, bucket, name, r, size, opts)
	return err
}

func (m minioClient) StatObject(ctx context.Context, bucket, name string) (minio.ObjectInfo, error) {
	return m.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{})
}

func (m minioClient) GetObject(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
}

func (m minioClient) PresignedGetObject(ctx context.Context, bucket, name string, expiry time.Duration, params url.Values) (*url.URL, error) {
	return m.client.PresignedGetObject(ctx, bucket, name, expiry, params)
}

func (m minioClient) RemoveObject(ctx context.Context, bucket, name string) error {
	return m.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{})
}

// MinioStore keeps workflow files in an S3-compatible bucket keyed by generated file ids
type MinioStore struct {
	client    objectClient
	bucket    string
	urlExpiry time.Duration
}

// NewMinioStore creates the client; no request is made until first use.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newMinioStore(minioClient{client: client}, cfg.Bucket, cfg.URLExpiry), nil
}

func newMinioStore(client objectClient, bucket string, urlExpiry time.Duration) *MinioStore {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &MinioStore{client: client, bucket: bucket, urlExpiry: urlExpiry}
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Store uploads r and returns the new file id.
func (s *MinioStore) Store(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileID := utils.GenerateUUIDv7().String()
	err := s.client.PutObject(ctx, s.bucket, fileID, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{metaFileName: name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return fileID, nil
}

// Retrieve opens the stored object. Unknown ids yield ErrNotFound.
func (s *MinioStore) Retrieve(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := s.stat(ctx, fileID); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return obj, nil
}

// URL returns a presigned download URL for the file.
func (s *MinioStore) URL(ctx context.Context, fileID string) (string, error) {
	if err := s.stat(ctx, fileID); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, fileID, s.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

// Delete removes the file; missing objects are not an error.
func (s *MinioStore) Delete(ctx context.Context, fileID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *MinioStore) stat(ctx context.Context, fileID string) error {
	if _, err := uuid.Parse(fileID); err != nil {
		return domainerrors.NotFound("file not found")
	}
	if _, err := s.client.StatObject(ctx, s.bucket, fileID); err != nil {
		if isNotFound(err) {
			return domainerrors.NotFound("file not found")
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
