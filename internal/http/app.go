package http

import (
	"context"

	"dealdesk_backend/platform/config"
	"dealdesk_backend/platform/logger"
)

// RouterConfig is what the router reads from configuration: listener and
// CORS settings plus the secret for validating access tokens.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /healthz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is built by cmd/api and handed to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health may be nil, in which case /healthz always answers ok.
	Health  HealthChecker
	Modules []Module
}
