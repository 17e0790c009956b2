package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/gemini"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/postgres"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service/auth"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
	"github.com/dschilow/Avatales-Backend-sub001/internal/task"
)

// application holds the shared application dependencies so startup wiring
// and shutdown cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	storyStore     store.StoryStore
	characterStore store.CharacterStore
	goalStore      store.LearningGoalStore

	jwtService   auth.JWTService
	eventEmitter events.EventEmitter

	userService      *service.UserService
	storyService     *service.StoryService
	characterService *service.CharacterService
	goalService      *service.LearningGoalService

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging and the database connection must be
// established by the caller.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
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
		"token_lifetime", cfg.Auth.TokenLifetime)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	verifier := auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.storyStore = postgres.NewPostgresStoryStore(db, logger)
	app.characterStore = postgres.NewPostgresCharacterStore(db, logger)
	app.goalStore = postgres.NewPostgresLearningGoalStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	generator, err := gemini.NewGenerator(ctx, logger.With("component", "story_generator"), cfg.Story)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize story generator: %w", err)
	}
	logger.Info("story generator initialized", "model", cfg.Story.Model)

	storyAccess, err := service.NewStoryAccessAdapter(
		db,
		app.storyStore,
		app.characterStore,
		app.goalStore,
		app.userStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create story access adapter: %w", err)
	}

	app.taskQueue = task.NewTaskQueue(cfg.Story.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, cfg.Story.WorkerCount, logger)

	scheduler, err := task.NewStoryGenerationScheduler(
		app.taskQueue,
		storyAccess,
		generator,
		cfg.Story.Model,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation scheduler: %w", err)
	}

	app.userService, err = service.NewUserService(
		db,
		app.userStore,
		app.jwtService,
		hasher,
		verifier,
		app.eventEmitter,
		cfg.Auth,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.storyService, err = service.NewStoryService(
		db,
		app.storyStore,
		app.userStore,
		app.characterStore,
		scheduler,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create story service: %w", err)
	}

	app.characterService, err = service.NewCharacterService(
		db,
		app.characterStore,
		app.userStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create character service: %w", err)
	}

	app.goalService, err = service.NewLearningGoalService(
		db,
		app.goalStore,
		app.userStore,
		app.characterStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create learning goal service: %w", err)
	}

	app.workerPool.Start()
	logger.Info("application initialized",
		"worker_count", cfg.Story.WorkerCount,
		"queue_size", cfg.Story.QueueSize)
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
