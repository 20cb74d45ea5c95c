// Package storage provides S3-compatible object storage for transaction
// documents. Uploads and downloads go through short-lived presigned URLs so
// file bytes never pass through the API.
package storage

import (
	"context"
	"time"
)

// PresignedURL contains the URL and metadata for a presigned upload/download operation.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStorage defines the object storage operations the documents module needs.
type ObjectStorage interface {
	// PresignUpload validates the upload and returns a PUT URL for fileKey.
	PresignUpload(ctx context.Context, bucket, fileKey, contentType string, sizeBytes int64) (*PresignedURL, error)

	// PresignDownload returns a GET URL that downloads fileKey as fileName.
	PresignDownload(ctx context.Context, bucket, fileKey, fileName string) (*PresignedURL, error)

	// ObjectExists reports whether fileKey has been uploaded.
	ObjectExists(ctx context.Context, bucket, fileKey string) (bool, error)

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
