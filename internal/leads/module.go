// Package leads provides the read-only lead directory bounded context.
package leads

import (
	apphttp "lead_feedback_backend/internal/http"
	"lead_feedback_backend/internal/leads/handler"
	"lead_feedback_backend/internal/leads/repository"
	"lead_feedback_backend/internal/leads/service"
	"lead_feedback_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead directory routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.SearchLeads)
	leads.GET("/:leadId", m.handler.GetLead)
	leads.GET("/:leadId/analytics", m.handler.GetLeadAnalytics)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
