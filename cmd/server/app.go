package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedscribe/feedscribe/internal/config"
	"github.com/feedscribe/feedscribe/internal/events"
	"github.com/feedscribe/feedscribe/internal/fetch"
	"github.com/feedscribe/feedscribe/internal/platform/gemini"
	"github.com/feedscribe/feedscribe/internal/platform/openai"
	"github.com/feedscribe/feedscribe/internal/platform/postgres"
	"github.com/feedscribe/feedscribe/internal/service"
	"github.com/feedscribe/feedscribe/internal/service/auth"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
	"github.com/feedscribe/feedscribe/internal/translation"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	feedStore   store.FeedStore
	entryStore  store.EntryStore
	digestStore store.DigestStore

	// Service interfaces
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	translator        translation.Translator
	feedService       service.FeedService
	digestService     service.DigestService
	translatorService service.TranslatorService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskManager *taskmanager.Manager
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMin))

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.feedStore = postgres.NewPostgresFeedStore(db, logger)
	app.entryStore = postgres.NewPostgresEntryStore(db, logger)
	app.digestStore = postgres.NewPostgresDigestStore(db, logger)

	app.translator, err = setupTranslator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translation provider: %w", err)
	}
	logger.Info("translation provider initialized",
		slog.String("provider", app.translator.Name()),
		slog.String("model", cfg.Translation.Model))

	app.taskManager, err = setupTaskManager(app)
	if err != nil {
		return nil, fmt.Errorf("failed to set up task manager: %w", err)
	}

	fetcher := fetch.NewFetcher(logger, nil)
	txRunner := service.NewSQLTxRunner(db)

	app.feedService, err = service.NewFeedService(
		app.feedStore,
		app.entryStore,
		fetcher,
		app.translator,
		app.taskManager,
		txRunner,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed service: %w", err)
	}

	app.digestService, err = service.NewDigestService(
		app.entryStore,
		app.digestStore,
		app.translator,
		app.taskManager,
		cfg.Translation.TargetLanguage,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest service: %w", err)
	}

	app.translatorService, err = service.NewTranslatorService(
		app.translator,
		app.taskManager,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupTranslator builds the configured translation provider.
func setupTranslator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (translation.Translator, error) {
	switch cfg.Translation.Provider {
	case "gemini":
		return gemini.NewTranslator(ctx, logger, cfg.Translation)
	case "openai":
		return openai.NewTranslator(logger, cfg.Translation)
	default:
		return nil, fmt.Errorf("unknown translation provider %q", cfg.Translation.Provider)
	}
}

// setupTaskManager starts the background task manager and routes task
// completions through the event system.
func setupTaskManager(app *application) (*taskmanager.Manager, error) {
	manager, err := taskmanager.New(taskmanager.Config{
		MaxWorkers:       app.config.Tasks.MaxWorkers,
		MaxTaskHistory:   app.config.Tasks.MaxTaskHistory,
		RestartThreshold: app.config.Tasks.RestartThreshold,
		MaxRecordAge:     time.Duration(app.config.Tasks.MaxRecordAgeHours) * time.Hour,
	}, app.logger)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(events.NewLogHandler(app.logger))
	app.eventEmitter = emitter

	manager.SetCompletionHandler(func(record taskmanager.Record) {
		event := events.NewTaskEvent(record)
		if err := app.eventEmitter.EmitEvent(context.Background(), event); err != nil {
			app.logger.Error("failed to emit task event",
				slog.String("task", record.Name),
				slog.Any("error", err))
		}
	})

	return manager, nil
}

// Run starts the application server, handling lifecycle and cleanup. It
// returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskManager != nil {
		app.taskManager.Shutdown(true)
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.Any("error", err))
		}
	}

	app.logger.Info("application shutdown completed")
}
