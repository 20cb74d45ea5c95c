// Package documents provides the transaction documents module.
package documents

import (
	"dealdesk_backend/internal/adapters/storage"
	"dealdesk_backend/internal/audit"
	"dealdesk_backend/internal/documents/handler"
	"dealdesk_backend/internal/documents/repository"
	"dealdesk_backend/internal/documents/service"
	"dealdesk_backend/internal/events"
	apphttp "dealdesk_backend/internal/http"
	"dealdesk_backend/platform/logger"
	"dealdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the documents domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new documents module with all dependencies wired.
// objectStorage may be nil when MinIO is not configured.
func NewModule(pool *pgxpool.Pool, objectStorage storage.ObjectStorage, bucket string, auditRecorder audit.Recorder, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, objectStorage, bucket, auditRecorder, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "documents"
}

// RegisterRoutes registers the module's routes under /api/v1/transactions/:id/documents
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/transactions"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
