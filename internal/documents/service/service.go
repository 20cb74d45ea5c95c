// Package service implements document upload and download for transactions.
// Files go straight to object storage through presigned URLs; the service
// only records metadata and announces uploads so transaction risk can follow
// the set of documents on file.
package service

import (
	"context"
	"path"
	"strings"
	"time"

	"dealdesk_backend/internal/adapters/storage"
	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/documents/repository"
	"dealdesk_backend/internal/documents/transport"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/platform/apperr"
	"dealdesk_backend/platform/logger"
	"dealdesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgStorageUnavailable = "document storage is not configured"
	msgForeignFileKey     = "file key does not belong to this transaction"
	msgFileNotUploaded    = "file has not been uploaded"
)

// Service provides business logic for documents
type Service struct {
	repo     repository.DocumentsRepository
	storage  storage.ObjectStorage
	bucket   string
	audit    audit.Recorder
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new documents service. objectStorage may be nil when MinIO
// is not configured; storage operations then fail with a validation error.
func New(repo repository.DocumentsRepository, objectStorage storage.ObjectStorage, bucket string, auditRecorder audit.Recorder, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		storage:  objectStorage,
		bucket:   bucket,
		audit:    auditRecorder,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// PresignUpload returns a PUT URL for a new document of the transaction.
func (s *Service) PresignUpload(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID, req transport.PresignUploadRequest) (transport.PresignedURLResponse, error) {
	if s.storage == nil {
		return transport.PresignedURLResponse{}, apperr.Validation(msgStorageUnavailable)
	}
	if err := s.repo.EnsureTransactionOwner(ctx, transactionID, userID); err != nil {
		return transport.PresignedURLResponse{}, err
	}

	key := fileKey(transactionID, req.DocType, req.FileName)
	presigned, err := s.storage.PresignUpload(ctx, s.bucket, key, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}

	return transport.PresignedURLResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmUpload records an uploaded file and publishes DocumentUploaded.
func (s *Service) ConfirmUpload(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID, req transport.ConfirmUploadRequest) (transport.DocumentResponse, error) {
	if s.storage == nil {
		return transport.DocumentResponse{}, apperr.Validation(msgStorageUnavailable)
	}
	if err := s.repo.EnsureTransactionOwner(ctx, transactionID, userID); err != nil {
		return transport.DocumentResponse{}, err
	}
	if !strings.HasPrefix(req.FileKey, keyPrefix(transactionID)) {
		return transport.DocumentResponse{}, apperr.Validation(msgForeignFileKey)
	}
	if err := storage.ValidateContentType(req.ContentType); err != nil {
		return transport.DocumentResponse{}, err
	}

	exists, err := s.storage.ObjectExists(ctx, s.bucket, req.FileKey)
	if err != nil {
		return transport.DocumentResponse{}, err
	}
	if !exists {
		return transport.DocumentResponse{}, apperr.Validation(msgFileNotUploaded)
	}

	doc, err := s.repo.Create(ctx, repository.Document{
		ID:            uuid.New(),
		TransactionID: transactionID,
		DocType:       normalizeDocType(req.DocType),
		FileKey:       req.FileKey,
		FileName:      sanitize.FileName(req.FileName),
		ContentType:   storage.NormalizeContentType(req.ContentType),
		SizeBytes:     req.SizeBytes,
		UploadedAt:    s.now().UTC(),
	})
	if err != nil {
		return transport.DocumentResponse{}, err
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, audit.Entry{
			UserID: &userID,
			Action: audit.ActionDocumentUploaded,
			Metadata: map[string]any{
				"transaction_id": transactionID.String(),
				"document_id":    doc.ID.String(),
				"doc_type":       doc.DocType,
			},
		}); err != nil {
			s.log.WithContext(ctx).AuditWriteFailed(audit.ActionDocumentUploaded, err)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DocumentUploaded{
			BaseEvent:     events.NewBaseEvent(),
			DocumentID:    doc.ID,
			TransactionID: transactionID,
			UserID:        userID,
			DocType:       doc.DocType,
		})
	}
	s.log.WithContext(ctx).Info("document uploaded",
		"transactionId", transactionID, "documentId", doc.ID, "docType", doc.DocType)

	return toResponse(doc), nil
}

// List returns the transaction's documents.
func (s *Service) List(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID) (transport.DocumentListResponse, error) {
	if err := s.repo.EnsureTransactionOwner(ctx, transactionID, userID); err != nil {
		return transport.DocumentListResponse{}, err
	}

	docs, err := s.repo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return transport.DocumentListResponse{}, err
	}

	items := make([]transport.DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = toResponse(d)
	}
	return transport.DocumentListResponse{Items: items}, nil
}

// DownloadURL returns a presigned GET URL for a document.
func (s *Service) DownloadURL(ctx context.Context, transactionID uuid.UUID, documentID uuid.UUID, userID uuid.UUID) (transport.PresignedURLResponse, error) {
	if s.storage == nil {
		return transport.PresignedURLResponse{}, apperr.Validation(msgStorageUnavailable)
	}
	if err := s.repo.EnsureTransactionOwner(ctx, transactionID, userID); err != nil {
		return transport.PresignedURLResponse{}, err
	}

	doc, err := s.repo.GetByID(ctx, transactionID, documentID)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}

	presigned, err := s.storage.PresignDownload(ctx, s.bucket, doc.FileKey, doc.FileName)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}

	return transport.PresignedURLResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

func keyPrefix(transactionID uuid.UUID) string {
	return "transactions/" + transactionID.String() + "/"
}

// fileKey builds transactions/{id}/{doc_type}/{uuid}{ext}. The client file
// name only contributes its extension.
func fileKey(transactionID uuid.UUID, docType, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	return keyPrefix(transactionID) + keySegment(normalizeDocType(docType)) + "/" + uuid.NewString() + ext
}

// normalizeDocType lowercases and snake-cases a document type.
func normalizeDocType(docType string) string {
	return strings.Join(strings.Fields(strings.ToLower(docType)), "_")
}

func keySegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

func toResponse(d repository.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		DocType:       d.DocType,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		SizeBytes:     d.SizeBytes,
		UploadedAt:    d.UploadedAt,
	}
}
