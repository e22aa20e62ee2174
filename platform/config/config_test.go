package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/feedback")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetSubmissionTimeout() != 5*time.Second {
		t.Fatalf("expected 5s submission timeout, got %s", cfg.GetSubmissionTimeout())
	}
	if cfg.GetAnalyticsTimeout() != 15*time.Second {
		t.Fatalf("expected 15s analytics timeout, got %s", cfg.GetAnalyticsTimeout())
	}
	if cfg.GetFeedbackRateLimitPerMinute() != 10 || cfg.GetFeedbackRateLimitBurst() != 10 {
		t.Fatalf("unexpected feedback rate limit %d/%d", cfg.GetFeedbackRateLimitPerMinute(), cfg.GetFeedbackRateLimitBurst())
	}
	if cfg.GetMinioBucketAnalyticsExports() != "analytics-exports" {
		t.Fatalf("unexpected bucket %q", cfg.GetMinioBucketAnalyticsExports())
	}
	if cfg.IsMinIOEnabled() {
		t.Fatalf("expected MinIO disabled without endpoint")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing DATABASE_URL")
	}
}

func TestLoadRejectsInvalidSubmissionTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("SUBMISSION_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparsable timeout")
	}
}

func TestWildcardOriginEnablesAllowAll(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatalf("expected wildcard origin to enable allow-all")
	}
}
