// Package analytics provides the read-only analytics bounded context computed
// on demand from the feedback ledger.
package analytics

import (
	apphttp "lead_feedback_backend/internal/http"
	"lead_feedback_backend/internal/analytics/handler"
	"lead_feedback_backend/internal/analytics/repository"
	"lead_feedback_backend/internal/analytics/service"
	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"
	"lead_feedback_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analytics module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.AnalyticsConfig, m *metrics.Manager, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, m, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the analytics service for the export archive job.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts analytics routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	analytics := ctx.Protected.Group("/analytics")
	analytics.GET("/overview", m.handler.Overview)
	analytics.GET("/ratings", m.handler.Ratings)
	analytics.GET("/issues", m.handler.Issues)
	analytics.GET("/status", m.handler.Statuses)
	analytics.GET("/lead-scores", m.handler.LeadScores)
	analytics.GET("/response-times", m.handler.ResponseTimes)
	analytics.GET("/dashboard", m.handler.Dashboard)
	analytics.GET("/export", m.handler.Export)

	ctx.Protected.GET("/feedback/analytics", m.handler.FeedbackAnalytics)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
