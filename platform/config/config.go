// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig controls schema migration on startup.
type MigrationConfig interface {
	DatabaseConfig
	GetMigrationsEnabled() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RateLimitConfig provides per-IP request limits.
type RateLimitConfig interface {
	GetFeedbackRateLimitPerMinute() int
	GetFeedbackRateLimitBurst() int
	GetAPIRateLimitPerMinute() int
}

// FeedbackConfig provides settings for the feedback submission workflow.
type FeedbackConfig interface {
	GetSubmissionTimeout() time.Duration
}

// AnalyticsConfig provides settings for analytics reads.
type AnalyticsConfig interface {
	GetAnalyticsTimeout() time.Duration
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetBrokerStatsReconcileCron() string
	GetAnalyticsArchiveCron() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketAnalyticsExports() string
	IsMinIOEnabled() bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig interface {
	GetMetricsEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                         string
	HTTPAddr                    string
	DatabaseURL                 string
	MigrationsEnabled           bool
	JWTAccessSecret             string
	CORSAllowAll                bool
	CORSOrigins                 []string
	CORSAllowCreds              bool
	SubmissionTimeout           time.Duration
	AnalyticsTimeout            time.Duration
	FeedbackRateLimitPerMinute  int
	FeedbackRateLimitBurst      int
	APIRateLimitPerMinute       int
	RedisURL                    string
	RedisTLSInsecure            bool
	AsynqQueueName              string
	AsynqConcurrency            int
	BrokerStatsReconcileCron    string
	AnalyticsArchiveCron        string
	MinIOEndpoint               string
	MinIOAccessKey              string
	MinIOSecretKey              string
	MinIOUseSSL                 bool
	MinioBucketAnalyticsExports string
	MetricsEnabled              bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// MigrationConfig implementation
func (c *Config) GetMigrationsEnabled() bool { return c.MigrationsEnabled }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RateLimitConfig implementation
func (c *Config) GetFeedbackRateLimitPerMinute() int { return c.FeedbackRateLimitPerMinute }
func (c *Config) GetFeedbackRateLimitBurst() int     { return c.FeedbackRateLimitBurst }
func (c *Config) GetAPIRateLimitPerMinute() int      { return c.APIRateLimitPerMinute }

// FeedbackConfig implementation
func (c *Config) GetSubmissionTimeout() time.Duration { return c.SubmissionTimeout }

// AnalyticsConfig implementation
func (c *Config) GetAnalyticsTimeout() time.Duration { return c.AnalyticsTimeout }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool           { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetBrokerStatsReconcileCron() string { return c.BrokerStatsReconcileCron }
func (c *Config) GetAnalyticsArchiveCron() string     { return c.AnalyticsArchiveCron }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketAnalyticsExports() string {
	return c.MinioBucketAnalyticsExports
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// MetricsConfig implementation
func (c *Config) GetMetricsEnabled() bool { return c.MetricsEnabled }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                         getEnv("APP_ENV", "development"),
		HTTPAddr:                    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                 getEnv("DATABASE_URL", ""),
		MigrationsEnabled:           strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:             getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:                corsAllowAll,
		CORSOrigins:                 corsOrigins,
		CORSAllowCreds:              strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		SubmissionTimeout:           mustDuration(getEnv("SUBMISSION_TIMEOUT", "5s")),
		AnalyticsTimeout:            mustDuration(getEnv("ANALYTICS_TIMEOUT", "15s")),
		FeedbackRateLimitPerMinute:  mustInt(getEnv("FEEDBACK_RATE_LIMIT_PER_MINUTE", "10")),
		FeedbackRateLimitBurst:      mustInt(getEnv("FEEDBACK_RATE_LIMIT_BURST", "10")),
		APIRateLimitPerMinute:       mustInt(getEnv("API_RATE_LIMIT_PER_MINUTE", "100")),
		RedisURL:                    getEnv("REDIS_URL", ""),
		RedisTLSInsecure:            strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:              getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:            mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		BrokerStatsReconcileCron:    getEnv("BROKER_STATS_RECONCILE_CRON", "@hourly"),
		AnalyticsArchiveCron:        getEnv("ANALYTICS_ARCHIVE_CRON", "@daily"),
		MinIOEndpoint:               getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:              getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:              getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                 strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketAnalyticsExports: getEnv("MINIO_BUCKET_ANALYTICS_EXPORTS", "analytics-exports"),
		MetricsEnabled:              strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SubmissionTimeout <= 0 {
		return nil, fmt.Errorf("SUBMISSION_TIMEOUT must be a positive duration")
	}
	if cfg.AnalyticsTimeout <= 0 {
		return nil, fmt.Errorf("ANALYTICS_TIMEOUT must be a positive duration")
	}
	if cfg.FeedbackRateLimitPerMinute <= 0 || cfg.FeedbackRateLimitBurst <= 0 || cfg.APIRateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("rate limits must be positive integers")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
