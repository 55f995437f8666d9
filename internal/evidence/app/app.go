package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probatio/probatio/internal/evidence/clients"
	httpapi "github.com/probatio/probatio/internal/evidence/http"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/internal/evidence/store/drivers/sqlite"
	"github.com/probatio/probatio/pkg/slogx"
)

const (
	// BuildVersion is the fallback reported until release builds stamp the
	// real version over it with -ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the evidence service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	// External clients
	authority *clients.AuthorityClient
	ledger    *clients.LedgerClient
	notifier  *clients.WebhookNotifier

	// Services
	tokenService      *service.TokenService
	otpService        *service.OTPService
	anchorService     *service.AnchorService
	documentService   *service.DocumentService
	agreementService  *service.AgreementService
	rebuttalService   *service.RebuttalService
	escalationService *service.EscalationService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "evidence-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.StaffJWTSecret == "" {
		return nil, errors.New("STAFF_JWT_SECRET is required")
	}
	if cfg.AuthorityURL == "" || cfg.LedgerURL == "" || cfg.NotifierURL == "" {
		return nil, errors.New("TIMESTAMP_AUTHORITY_URL, LEDGER_URL and NOTIFIER_URL are required")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initClients()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	sweepCtx, cancelSweep := context.WithCancel(slogx.WithContext(context.Background(), app.logger))
	defer cancelSweep()
	app.escalationService.Start(sweepCtx)

	app.logger.Info("evidence service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down evidence service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the escalation sweep
	app.escalationService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("evidence service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initClients initializes the external system clients.
func (app *Application) initClients() {
	app.authority = clients.NewAuthorityClient(app.cfg.AuthorityURL, app.cfg.AuthorityAPIKey)
	app.ledger = clients.NewLedgerClient(app.cfg.LedgerURL, app.cfg.LedgerAPIKey)
	app.notifier = clients.NewWebhookNotifier(app.cfg.NotifierURL, app.cfg.NotifierAPIKey)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.anchorService = &service.AnchorService{
		Store:     app.db,
		Authority: app.authority,
		Ledger:    app.ledger,
	}

	app.tokenService = &service.TokenService{Store: app.db}
	app.otpService = &service.OTPService{
		Store:    app.db,
		Notifier: app.notifier,
		TTL:      app.cfg.OTPTTL,
	}

	app.documentService = &service.DocumentService{
		Store:  app.db,
		Tokens: app.tokenService,
	}
	app.agreementService = &service.AgreementService{
		Store:  app.db,
		OTP:    app.otpService,
		Anchor: app.anchorService,
	}
	app.rebuttalService = &service.RebuttalService{
		Store:  app.db,
		Anchor: app.anchorService,
	}

	app.escalationService = &service.EscalationService{
		Store:    app.db,
		Notifier: app.notifier,
		Anchor:   app.anchorService,
		Interval: app.cfg.SweepInterval,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		[]byte(app.cfg.StaffJWTSecret),
		app.cfg.StaffJWTIssuer,
		app.cfg.StaffAPIKeyHash,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.DocumentService = app.documentService
	router.AgreementService = app.agreementService
	router.RebuttalService = app.rebuttalService
	router.EscalationService = app.escalationService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
