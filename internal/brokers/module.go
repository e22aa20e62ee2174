// Package brokers provides the read-only broker directory bounded context.
package brokers

import (
	"lead_feedback_backend/internal/brokers/handler"
	"lead_feedback_backend/internal/brokers/repository"
	"lead_feedback_backend/internal/brokers/service"
	apphttp "lead_feedback_backend/internal/http"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the brokers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the brokers module. reconciler may be nil,
// in which case the reconcile endpoint is not mounted.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, reconciler service.StatsReconcileEnqueuer, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), reconciler, log)
	return &Module{handler: handler.New(svc, val), svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "brokers"
}

// RegisterRoutes mounts broker directory routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	brokers := ctx.Protected.Group("/brokers")
	brokers.GET("", m.handler.ListBrokers)
	brokers.GET("/leaderboard/top", m.handler.Leaderboard)
	brokers.GET("/:brokerId", m.handler.GetBroker)
	brokers.GET("/:brokerId/analytics", m.handler.GetBrokerAnalytics)
	if m.svc.CanReconcile() {
		brokers.POST("/stats/reconcile", m.handler.ReconcileStats)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
