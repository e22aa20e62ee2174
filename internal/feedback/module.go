// Package feedback provides the feedback ingestion bounded context: the public
// submission endpoint, the transactional submission workflow and feedback reads.
package feedback

import (
	apphttp "lead_feedback_backend/internal/http"
	"lead_feedback_backend/internal/feedback/handler"
	"lead_feedback_backend/internal/feedback/repository"
	"lead_feedback_backend/internal/feedback/service"
	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"
	"lead_feedback_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the feedback bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the feedback repository, service and handler.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.FeedbackConfig, m *metrics.Manager, log *logger.Logger) (*Module, error) {
	if err := RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg, m, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "feedback"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts feedback routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/feedback")
	if ctx.SubmissionRateLimiter != nil {
		public.POST("", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Submit)
	} else {
		public.POST("", m.handler.Submit)
	}

	protected := ctx.Protected.Group("/feedback")
	protected.GET("/lead/:leadId", m.handler.GetByLead)
	protected.GET("/broker/:brokerId", m.handler.ListByBroker)
	protected.GET("/recent", m.handler.ListRecent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
