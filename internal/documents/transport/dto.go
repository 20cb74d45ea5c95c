package transport

import (
	"time"

	"github.com/google/uuid"
)

// PresignUploadRequest is the request body for requesting an upload URL
type PresignUploadRequest struct {
	DocType     string `json:"docType" validate:"required,max=64"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=127"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// PresignedURLResponse is a presigned storage URL
type PresignedURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConfirmUploadRequest records a completed upload
type ConfirmUploadRequest struct {
	DocType     string `json:"docType" validate:"required,max=64"`
	FileKey     string `json:"fileKey" validate:"required,max=512"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=127"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// DocumentResponse is the response body for a document
type DocumentResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transactionId"`
	DocType       string    `json:"docType"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	SizeBytes     int64     `json:"sizeBytes"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// DocumentListResponse lists a transaction's documents
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
}
