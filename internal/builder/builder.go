package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/owlingo/console-backend/internal/api"
	catalogapi "github.com/owlingo/console-backend/internal/api/catalog"
	libraryapi "github.com/owlingo/console-backend/internal/api/library"
	wizardapi "github.com/owlingo/console-backend/internal/api/wizard"
	"github.com/owlingo/console-backend/internal/config"
	"github.com/owlingo/console-backend/internal/integration/callback"
	catalogconn "github.com/owlingo/console-backend/internal/integration/catalog"
	"github.com/owlingo/console-backend/internal/integration/generation"
	"github.com/owlingo/console-backend/internal/integration/speech"
	"github.com/owlingo/console-backend/internal/pkg/formatter"
	"github.com/owlingo/console-backend/internal/pkg/validator"
	"github.com/owlingo/console-backend/internal/repository"
	libraryuc "github.com/owlingo/console-backend/internal/usecase/library"
	wizarduc "github.com/owlingo/console-backend/internal/usecase/wizard"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	contentRepo := repository.NewContentPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	// Initialize external service connectors (with mock support)
	var generationConnector wizarduc.GenerationConnector
	var speechConnector wizarduc.SpeechConnector
	var catalogConnector wizarduc.CatalogConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		generationConnector = generation.NewMockConnector(logger)
		speechConnector = speech.NewMockConnector(logger)
		catalogConnector = catalogconn.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		generationConnector = generation.NewConnector(cfg.GenerationConnectorCfg, logger)
		speechConnector = speech.NewConnector(cfg.SpeechConnectorCfg, logger)
		catalogConnector = catalogconn.NewConnector(cfg.CatalogConnectorCfg, logger)
	}

	// Initialize validators
	requestValidator := validator.NewValidator()
	logger.Info("Validators initialized")

	// Initialize use cases
	sessionStore := wizarduc.NewSessionStore(cfg.WizardCfg.SessionTTL)
	wizardUC := wizarduc.NewUsecase(
		sessionStore,
		contentRepo,
		catalogConnector,
		generationConnector,
		speechConnector,
		callbackConnector,
		&cfg.SpeechConnectorCfg.Retry,
		cfg.WizardCfg.DefaultVoice,
		cfg.MixOptions,
		logger,
	)

	libraryUC := libraryuc.NewUsecase(contentRepo, formatter.NewFactory(), logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	wizardHandler := wizardapi.NewHandler(wizardUC, requestValidator)
	catalogHandler := catalogapi.NewHandler(catalogConnector)
	libraryHandler := libraryapi.NewHandler(libraryUC, requestValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(wizardHandler, catalogHandler, libraryHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
