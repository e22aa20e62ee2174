package handler

import (
	"net/http"

	"lead_feedback_backend/internal/analytics/service"
	"lead_feedback_backend/internal/analytics/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/httpkit"
	"lead_feedback_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for analytics.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidRequest = "invalid request"

// New creates a new analytics handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Overview handles GET /api/v1/analytics/overview
func (h *Handler) Overview(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.Overview(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Ratings handles GET /api/v1/analytics/ratings
func (h *Handler) Ratings(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.RatingTrend(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Issues handles GET /api/v1/analytics/issues
func (h *Handler) Issues(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.Issues(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Statuses handles GET /api/v1/analytics/status
func (h *Handler) Statuses(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.StatusDistribution(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LeadScores handles GET /api/v1/analytics/lead-scores
func (h *Handler) LeadScores(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.LeadScoreCorrelation(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ResponseTimes handles GET /api/v1/analytics/response-times
func (h *Handler) ResponseTimes(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.ResponseTimes(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Dashboard handles GET /api/v1/analytics/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.Dashboard(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// FeedbackAnalytics handles GET /api/v1/feedback/analytics
func (h *Handler) FeedbackAnalytics(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.FeedbackAnalytics(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Export handles GET /api/v1/analytics/export?format=json|csv and serves the
// rendered export as a file download.
func (h *Handler) Export(c *gin.Context) {
	var req transport.ExportQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, invalidRequest())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	q, err := toQuery(req.AnalyticsQuery)
	if httpkit.HandleError(c, err) {
		return
	}

	file, err := h.svc.Export(c.Request.Context(), q, req.Format)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func (h *Handler) bindQuery(c *gin.Context) (service.Query, bool) {
	var req transport.AnalyticsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, invalidRequest())
		return service.Query{}, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return service.Query{}, false
	}
	q, err := toQuery(req)
	if httpkit.HandleError(c, err) {
		return service.Query{}, false
	}
	return q, true
}

func toQuery(req transport.AnalyticsQuery) (service.Query, error) {
	start, err := httpkit.ParseTimeParam(req.StartDate, false)
	if err != nil {
		return service.Query{}, err
	}
	end, err := httpkit.ParseTimeParam(req.EndDate, true)
	if err != nil {
		return service.Query{}, err
	}
	return service.Query{Start: start, End: end, BrokerExternalID: req.BrokerID, Limit: req.Limit}, nil
}

func invalidRequest() *apperr.Error {
	return apperr.Validation(msgInvalidRequest).WithCode(apperr.CodeValidation)
}
