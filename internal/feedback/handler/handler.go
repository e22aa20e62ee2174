package handler

import (
	"strings"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/internal/feedback/service"
	"lead_feedback_backend/internal/feedback/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/httpkit"
	"lead_feedback_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for feedback.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest = "invalid request"
	msgMissingID      = "external id is required"
)

// New creates a new feedback handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit records feedback from the public form.
// POST /api/v1/feedback
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, invalidRequest())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	sub := domain.Submission{
		ExternalLeadID:     req.LeadID,
		ExternalBrokerID:   req.BrokerID,
		Rating:             req.Rating,
		Status:             domain.Status(req.Status),
		Issues:             req.Issues,
		Comments:           req.Comments,
		LeadScore:          req.LeadScore,
		FormCompletionTime: req.FormCompletionTime,
		SessionID:          req.SessionID,
		TouchDevice:        req.TouchDevice,
	}
	if ua := strings.TrimSpace(c.GetHeader("User-Agent")); ua != "" {
		sub.UserAgent = &ua
	}
	if ip := c.ClientIP(); ip != "" {
		sub.ClientIP = &ip
	}

	result, err := h.svc.Submit(c.Request.Context(), sub)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetByLead returns the latest feedback for a lead.
// GET /api/v1/feedback/lead/:leadId
func (h *Handler) GetByLead(c *gin.Context) {
	leadID := strings.TrimSpace(c.Param("leadId"))
	if leadID == "" {
		httpkit.HandleError(c, apperr.Validation(msgMissingID).WithCode(apperr.CodeValidation))
		return
	}

	result, err := h.svc.GetByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByBroker returns a page of a broker's feedback.
// GET /api/v1/feedback/broker/:brokerId
func (h *Handler) ListByBroker(c *gin.Context) {
	var req transport.ListBrokerFeedbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, invalidRequest())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	result, err := h.svc.ListByBroker(c.Request.Context(), strings.TrimSpace(c.Param("brokerId")), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListRecent returns the newest feedback entries.
// GET /api/v1/feedback/recent
func (h *Handler) ListRecent(c *gin.Context) {
	var req transport.ListRecentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, invalidRequest())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	result, err := h.svc.ListRecent(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func invalidRequest() *apperr.Error {
	return apperr.Validation(msgInvalidRequest).WithCode(apperr.CodeValidation)
}
