package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/files"
	"github.com/taskhive/taskhive/internal/platform/postgres"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/service/auth"
	"github.com/taskhive/taskhive/internal/store"
)

// revocationJanitorInterval is how often expired entries are purged from the
// token revocation list.
const revocationJanitorInterval = 5 * time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore       store.UserStore
	projectStore    store.ProjectStore
	taskStore       store.TaskStore
	categoryStore   store.CategoryStore
	commentStore    store.CommentStore
	attachmentStore store.AttachmentStore

	// Auth
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	revocations      *auth.RevocationList

	// Attachment blob storage
	blobs *files.DiskStore

	// Realtime subsystem
	rooms       *realtime.RoomManager
	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster
	wsHandler   *realtime.Handler
}

// newApplication creates a new application instance with all dependencies
// initialized. The caller owns db until this returns successfully.
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
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwordVerifier = auth.NewBcryptVerifier()
	app.revocations = auth.NewRevocationList()
	app.revocations.StartJanitor(ctx, revocationJanitorInterval)

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.projectStore = postgres.NewPostgresProjectStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.categoryStore = postgres.NewPostgresCategoryStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)
	app.attachmentStore = postgres.NewPostgresAttachmentStore(db, logger)

	app.blobs, err = files.NewDiskStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	logger.Info("attachment storage initialized",
		slog.String("upload_dir", cfg.Storage.UploadDir),
		slog.Int64("max_upload_bytes", cfg.Storage.MaxUploadBytes))

	app.rooms = realtime.NewRoomManager(cfg.Realtime.RoomShards)
	app.registry = realtime.NewRegistry(
		app.rooms,
		&realtime.JWTVerifier{JWT: app.jwtService},
		app.revocations,
		logger,
	)
	app.broadcaster = realtime.NewBroadcaster(
		app.rooms,
		app.registry,
		realtime.DefaultRoutingPolicy(),
		logger,
	)
	app.wsHandler = realtime.NewHandler(
		cfg.Realtime,
		app.registry,
		app.rooms,
		&realtime.MembershipAccessChecker{Projects: app.projectStore},
		&realtime.StoreUserDirectory{Users: app.userStore},
		app.revocations,
		logger,
	)

	logger.Info("application initialized successfully")
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
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
