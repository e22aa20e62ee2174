// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.RateLimitConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP, JWT and rate limits).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (DB ping).
	Health HealthChecker
	// Metrics is nil when the Prometheus endpoint is disabled.
	Metrics *metrics.Manager
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
