package handler

import (
	"strings"

	"lead_feedback_backend/internal/leads/service"
	"lead_feedback_backend/internal/leads/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/httpkit"
	"lead_feedback_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the lead directory.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest = "invalid request"
	msgMissingLeadID  = "lead id is required"
)

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetLead handles GET /api/v1/leads/:leadId
func (h *Handler) GetLead(c *gin.Context) {
	leadID := strings.TrimSpace(c.Param("leadId"))
	if leadID == "" {
		httpkit.HandleError(c, apperr.Validation(msgMissingLeadID).WithCode(apperr.CodeValidation))
		return
	}

	result, err := h.svc.GetLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetLeadAnalytics handles GET /api/v1/leads/:leadId/analytics
func (h *Handler) GetLeadAnalytics(c *gin.Context) {
	leadID := strings.TrimSpace(c.Param("leadId"))
	if leadID == "" {
		httpkit.HandleError(c, apperr.Validation(msgMissingLeadID).WithCode(apperr.CodeValidation))
		return
	}

	result, err := h.svc.GetLeadAnalytics(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SearchLeads handles GET /api/v1/leads
func (h *Handler) SearchLeads(c *gin.Context) {
	var req transport.SearchLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest).WithCode(apperr.CodeValidation))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	from, err := httpkit.ParseTimeParam(req.StartDate, false)
	if httpkit.HandleError(c, err) {
		return
	}
	to, err := httpkit.ParseTimeParam(req.EndDate, true)
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.SearchLeads(c.Request.Context(), service.SearchParams{
		InsuranceType: req.InsuranceType,
		Urgency:       req.Urgency,
		Source:        req.Source,
		MinScore:      req.MinScore,
		MaxScore:      req.MaxScore,
		GeneratedFrom: from,
		GeneratedTo:   to,
		Page:          req.Page,
		PageSize:      req.Limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
