package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/metrics"
	"github.com/taskhub/taskhub-api/internal/platform/identity"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Identity provider integration
	verifier       identity.TokenVerifier
	identityClient *identity.Client

	// Services
	directory   *service.UserDirectory
	taskService service.TaskService
	authGateway *auth.Gateway

	// Observability
	registry  *prometheus.Registry
	collector *metrics.Collector

	// Rate limiter for authentication endpoints, stopped on shutdown
	authLimiter *middleware.RateLimiter
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts the core dependencies that must
// be established before application wiring.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Token verification against the provider's published signing keys
	certSource := identity.NewCertSource(cfg.Identity.CertsURL, nil)
	verifier, err := identity.NewVerifier(cfg.Identity.ProjectID, certSource)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	// Provider REST client for signup/login
	app.identityClient, err = identity.NewClient(identity.ClientConfig{
		APIKey:  cfg.Identity.APIKey,
		BaseURL: cfg.Identity.BaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity client: %w", err)
	}

	// Services
	app.directory, err = service.NewUserDirectory(app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user directory: %w", err)
	}

	app.taskService, err = service.NewTaskService(db, app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.authGateway, err = auth.NewGateway(app.identityClient, app.directory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth gateway: %w", err)
	}

	// Metrics
	app.registry = prometheus.NewRegistry()
	app.collector = metrics.NewCollector(app.registry)
	app.authGateway.SetMetrics(app.collector)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.authLimiter != nil {
		app.authLimiter.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
