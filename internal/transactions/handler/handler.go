package handler

import (
	"context"
	"net/http"

	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/internal/transactions/service"
	"dealdesk_backend/internal/transactions/transport"
	"dealdesk_backend/platform/httpkit"
	"dealdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// TransactionService is the slice of the transactions service the handler calls.
type TransactionService interface {
	Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (service.TransactionView, error)
	AdvanceStage(ctx context.Context, id uuid.UUID, userID uuid.UUID) (service.StageChangeResult, error)
	TransitionStage(ctx context.Context, id uuid.UUID, userID uuid.UUID, next domain.Stage) (service.StageChangeResult, error)
	CancelTransaction(ctx context.Context, id uuid.UUID, userID uuid.UUID) (service.StageChangeResult, error)
	ListTasksGrouped(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]domain.TaskGroup, error)
	ToggleTask(ctx context.Context, id uuid.UUID, taskID uuid.UUID, userID uuid.UUID, completed bool) (service.ToggleTaskResult, error)
	RecalculateRisk(ctx context.Context, id uuid.UUID, userID uuid.UUID) (service.RiskAssessment, error)
	RiskSummary(ctx context.Context, id uuid.UUID, userID uuid.UUID) (service.RiskAssessment, error)
	CompareOffers(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error)
	ScoreOffer(ctx context.Context, offerID uuid.UUID, userID uuid.UUID) (service.OfferScoreResult, error)
}

// Handler handles HTTP requests for transactions and their offers
type Handler struct {
	svc TransactionService
	val *validator.Validator
}

// New creates a new transactions handler
func New(svc TransactionService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the transaction routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/advance", h.Advance)
	rg.POST("/:id/transition", h.Transition)
	rg.POST("/:id/cancel", h.Cancel)
	rg.GET("/:id/tasks", h.ListTasks)
	rg.PATCH("/:id/tasks/:taskId", h.ToggleTask)
	rg.GET("/:id/risk", h.GetRisk)
	rg.POST("/:id/risk/recalculate", h.RecalculateRisk)
	rg.GET("/:id/offers/compare", h.CompareOffers)
}

// RegisterOfferRoutes registers the offer routes
func (h *Handler) RegisterOfferRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/score", h.ScoreOffer)
}

// GetByID handles GET /api/v1/transactions/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTransactionResponse(result))
}

// Advance handles POST /api/v1/transactions/:id/advance
func (h *Handler) Advance(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.AdvanceStage(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStageChangeResponse(result))
}

// Transition handles POST /api/v1/transactions/:id/transition
func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.TransitionStage(c.Request.Context(), id, identity.UserID(), domain.Stage(req.Stage))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStageChangeResponse(result))
}

// Cancel handles POST /api/v1/transactions/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.CancelTransaction(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStageChangeResponse(result))
}

// ListTasks handles GET /api/v1/transactions/:id/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	groups, err := h.svc.ListTasksGrouped(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTaskListResponse(groups))
}

// ToggleTask handles PATCH /api/v1/transactions/:id/tasks/:taskId
func (h *Handler) ToggleTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ToggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ToggleTask(c.Request.Context(), id, taskID, identity.UserID(), *req.Completed)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToggleTaskResponse{
		Task: toTaskResponse(result.Task),
		Risk: toRiskResponsePtr(result.Risk),
	})
}

// GetRisk handles GET /api/v1/transactions/:id/risk
func (h *Handler) GetRisk(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.RiskSummary(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toRiskResponse(result))
}

// RecalculateRisk handles POST /api/v1/transactions/:id/risk/recalculate
func (h *Handler) RecalculateRisk(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.RecalculateRisk(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toRiskResponse(result))
}

// CompareOffers handles GET /api/v1/transactions/:id/offers/compare
func (h *Handler) CompareOffers(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	ids, err := h.svc.CompareOffers(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CompareOffersResponse{OfferIDs: ids})
}

// ScoreOffer handles POST /api/v1/offers/:id/score
func (h *Handler) ScoreOffer(c *gin.Context) {
	id, identity, ok := h.pathAndIdentity(c)
	if !ok {
		return
	}

	result, err := h.svc.ScoreOffer(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toOfferScoreResponse(result))
}

// pathAndIdentity parses the :id parameter and the caller. It writes the
// error response itself and returns ok=false when either is missing.
func (h *Handler) pathAndIdentity(c *gin.Context) (uuid.UUID, httpkit.Identity, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, nil, false
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.UUID{}, nil, false
	}
	return id, identity, true
}

var _ TransactionService = (*service.Service)(nil)
