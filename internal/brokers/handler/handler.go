package handler

import (
	"net/http"
	"strings"

	"lead_feedback_backend/internal/brokers/service"
	"lead_feedback_backend/internal/brokers/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/httpkit"
	"lead_feedback_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the broker directory.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest  = "invalid request"
	msgMissingBrokerID = "broker id is required"
)

// New creates a new brokers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListBrokers handles GET /api/v1/brokers
func (h *Handler) ListBrokers(c *gin.Context) {
	var req transport.ListBrokersRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.ListActiveBrokers(c.Request.Context(), service.ListParams{
		Location: req.Location,
		Company:  req.Company,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Leaderboard handles GET /api/v1/brokers/leaderboard/top
func (h *Handler) Leaderboard(c *gin.Context) {
	var req transport.LeaderboardRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Leaderboard(c.Request.Context(), req.Metric, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetBroker handles GET /api/v1/brokers/:brokerId
func (h *Handler) GetBroker(c *gin.Context) {
	brokerID := strings.TrimSpace(c.Param("brokerId"))
	if brokerID == "" {
		httpkit.HandleError(c, apperr.Validation(msgMissingBrokerID).WithCode(apperr.CodeValidation))
		return
	}

	result, err := h.svc.GetBroker(c.Request.Context(), brokerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetBrokerAnalytics handles GET /api/v1/brokers/:brokerId/analytics
func (h *Handler) GetBrokerAnalytics(c *gin.Context) {
	brokerID := strings.TrimSpace(c.Param("brokerId"))
	if brokerID == "" {
		httpkit.HandleError(c, apperr.Validation(msgMissingBrokerID).WithCode(apperr.CodeValidation))
		return
	}

	var req transport.BrokerAnalyticsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	start, err := httpkit.ParseTimeParam(req.StartDate, false)
	if httpkit.HandleError(c, err) {
		return
	}
	end, err := httpkit.ParseTimeParam(req.EndDate, true)
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.GetBrokerAnalytics(c.Request.Context(), brokerID, start, end)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ReconcileStats handles POST /api/v1/brokers/stats/reconcile
func (h *Handler) ReconcileStats(c *gin.Context) {
	requestedBy := httpkit.GetIdentity(c).Subject()
	if httpkit.HandleError(c, h.svc.RequestStatsReconcile(c.Request.Context(), requestedBy)) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, transport.ReconcileAcceptedResponse{Status: "queued"})
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest).WithCode(apperr.CodeValidation))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return false
	}
	return true
}
