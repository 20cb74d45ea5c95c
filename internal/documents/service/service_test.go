package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"dealdesk_backend/internal/adapters/storage"
	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/documents/repository"
	"dealdesk_backend/internal/documents/transport"
	"dealdesk_backend/internal/events"
	"dealdesk_backend/platform/apperr"
	"dealdesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	owners map[uuid.UUID]uuid.UUID
	docs   map[uuid.UUID]repository.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{owners: map[uuid.UUID]uuid.UUID{}, docs: map[uuid.UUID]repository.Document{}}
}

func (r *fakeRepo) EnsureTransactionOwner(_ context.Context, transactionID, userID uuid.UUID) error {
	if owner, ok := r.owners[transactionID]; !ok || owner != userID {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func (r *fakeRepo) Create(_ context.Context, doc repository.Document) (repository.Document, error) {
	for _, existing := range r.docs {
		if existing.FileKey == doc.FileKey {
			return existing, nil
		}
	}
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeRepo) GetByID(_ context.Context, transactionID, id uuid.UUID) (repository.Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.TransactionID != transactionID {
		return repository.Document{}, apperr.NotFound("document not found")
	}
	return doc, nil
}

func (r *fakeRepo) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]repository.Document, error) {
	var out []repository.Document
	for _, d := range r.docs {
		if d.TransactionID == transactionID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeStorage struct {
	uploaded map[string]bool
	statErr  error
}

func (s *fakeStorage) PresignUpload(_ context.Context, bucket, fileKey, contentType string, sizeBytes int64) (*storage.PresignedURL, error) {
	if err := storage.ValidateContentType(contentType); err != nil {
		return nil, err
	}
	return &storage.PresignedURL{URL: "https://minio.local/" + bucket + "/" + fileKey, FileKey: fileKey}, nil
}

func (s *fakeStorage) PresignDownload(_ context.Context, bucket, fileKey, _ string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/" + bucket + "/" + fileKey + "?download", FileKey: fileKey}, nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, _, fileKey string) (bool, error) {
	if s.statErr != nil {
		return false, s.statErr
	}
	return s.uploaded[fileKey], nil
}

func (s *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }

type fakeAudit struct {
	entries []audit.Entry
	err     error
}

func (a *fakeAudit) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return a.err
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	storage *fakeStorage
	audit   *fakeAudit
	bus     *recordingBus
	txID    uuid.UUID
	userID  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newFakeRepo(),
		storage: &fakeStorage{uploaded: map[string]bool{}},
		audit:   &fakeAudit{},
		bus:     &recordingBus{},
		txID:    uuid.New(),
		userID:  uuid.New(),
	}
	f.repo.owners[f.txID] = f.userID
	f.svc = New(f.repo, f.storage, "transaction-documents", f.audit, f.bus, logger.NewWithWriter("production", io.Discard))
	f.svc.now = func() time.Time { return time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) presign(t *testing.T, docType string) string {
	t.Helper()
	resp, err := f.svc.PresignUpload(context.Background(), f.txID, f.userID, transport.PresignUploadRequest{
		DocType: docType, FileName: "Signed Contract.PDF", ContentType: "application/pdf", SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	return resp.FileKey
}

func TestPresignUploadBuildsScopedKey(t *testing.T) {
	f := newFixture()
	key := f.presign(t, "Purchase Contract")

	prefix := "transactions/" + f.txID.String() + "/purchase_contract/"
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("expected key under %q, got %q", prefix, key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("expected lowercase extension, got %q", key)
	}
	if strings.Contains(key, "Signed") {
		t.Fatalf("client file name leaked into key: %q", key)
	}
}

func TestPresignUploadRejectsOtherUsersTransaction(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PresignUpload(context.Background(), f.txID, uuid.New(), transport.PresignUploadRequest{
		DocType: "inspection", FileName: "a.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPresignUploadRejectsDisallowedContentType(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PresignUpload(context.Background(), f.txID, f.userID, transport.PresignUploadRequest{
		DocType: "inspection", FileName: "a.exe", ContentType: "application/x-msdownload", SizeBytes: 1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmUploadRecordsAndPublishes(t *testing.T) {
	f := newFixture()
	key := f.presign(t, "Inspection Report")
	f.storage.uploaded[key] = true

	doc, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "Inspection Report", FileKey: key, FileName: "../<b>report.pdf</b>", ContentType: "application/pdf; charset=binary", SizeBytes: 2048,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if doc.DocType != "inspection_report" || doc.ContentType != "application/pdf" || doc.FileName != "report.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	if len(f.bus.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.bus.events))
	}
	uploaded, ok := f.bus.events[0].(events.DocumentUploaded)
	if !ok || uploaded.TransactionID != f.txID || uploaded.DocType != "inspection_report" {
		t.Fatalf("unexpected event: %+v", f.bus.events[0])
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != audit.ActionDocumentUploaded {
		t.Fatalf("expected document_uploaded audit entry, got %+v", f.audit.entries)
	}
}

func TestConfirmUploadRequiresObjectInStorage(t *testing.T) {
	f := newFixture()
	key := f.presign(t, "contract")

	_, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "contract", FileKey: key, FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.bus.events) != 0 || len(f.repo.docs) != 0 {
		t.Fatalf("nothing should be recorded for a missing upload")
	}
}

func TestConfirmUploadRejectsKeyOfAnotherTransaction(t *testing.T) {
	f := newFixture()
	foreign := "transactions/" + uuid.NewString() + "/contract/x.pdf"
	f.storage.uploaded[foreign] = true

	_, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "contract", FileKey: foreign, FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmUploadSurfacesStorageFailure(t *testing.T) {
	f := newFixture()
	key := f.presign(t, "contract")
	f.storage.statErr = errors.New("minio unreachable")

	_, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "contract", FileKey: key, FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if err == nil || apperr.GetKind(err) != apperr.KindUnknown {
		t.Fatalf("expected untyped store failure, got %v", err)
	}
}

func TestConfirmUploadSwallowsAuditFailure(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("audit table locked")
	key := f.presign(t, "contract")
	f.storage.uploaded[key] = true

	if _, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "contract", FileKey: key, FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	}); err != nil {
		t.Fatalf("audit failure must not fail the upload: %v", err)
	}
}

func TestDownloadURLChecksDocumentBelongsToTransaction(t *testing.T) {
	f := newFixture()
	key := f.presign(t, "contract")
	f.storage.uploaded[key] = true
	doc, err := f.svc.ConfirmUpload(context.Background(), f.txID, f.userID, transport.ConfirmUploadRequest{
		DocType: "contract", FileKey: key, FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	url, err := f.svc.DownloadURL(context.Background(), f.txID, doc.ID, f.userID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if url.FileKey != key {
		t.Fatalf("expected key %q, got %q", key, url.FileKey)
	}

	otherTx := uuid.New()
	f.repo.owners[otherTx] = f.userID
	if _, err := f.svc.DownloadURL(context.Background(), otherTx, doc.ID, f.userID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found through another transaction, got %v", err)
	}
}

func TestStorageOperationsFailWithoutStorage(t *testing.T) {
	f := newFixture()
	svc := New(f.repo, nil, "bucket", nil, nil, logger.NewWithWriter("production", io.Discard))

	_, err := svc.PresignUpload(context.Background(), f.txID, f.userID, transport.PresignUploadRequest{
		DocType: "contract", FileName: "c.pdf", ContentType: "application/pdf", SizeBytes: 1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	list, err := svc.List(context.Background(), f.txID, f.userID)
	if err != nil || len(list.Items) != 0 {
		t.Fatalf("listing should work without storage, got %v, %v", list, err)
	}
}
