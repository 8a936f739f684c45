package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/stackdeck/backend/internal/handlers"
	"github.com/stackdeck/backend/internal/middleware"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/internal/tasks"
	"github.com/stackdeck/backend/pkg/captions"
	"github.com/stackdeck/backend/pkg/config"
	"github.com/stackdeck/backend/pkg/hashid"
	"github.com/stackdeck/backend/pkg/push"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes wires repositories, the notification pipeline and all
// application routes. Resolver registration is validated here so that a
// tracked action without a resolver fails at startup, not at dispatch.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, transport push.Transport, endpoints push.EndpointResolver, pool *tasks.Pool) {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Stack{},
		&models.Card{},
		&models.Comment{},
		&models.Vote{},
		&models.Flag{},
		&models.Subscription{},
		&models.Device{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	hashids, err := hashid.New(cfg.HashidSalt)
	if err != nil {
		log.Fatalf("Failed to initialize hashid codec: %v", err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	stackRepo := repositories.NewPostgresStackRepository(db.Postgres)
	cardRepo := repositories.NewPostgresCardRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	voteRepo := repositories.NewPostgresVoteRepository(db.Postgres)
	flagRepo := repositories.NewPostgresFlagRepository(db.Postgres)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(db.Postgres)
	deviceRepo := repositories.NewPostgresDeviceRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	activityRepo := repositories.NewMongoActivityRepository(db.Mongo.Database("stackdeck"))

	// --- Notification pipeline ---
	renderer := captions.NewEnglish()
	presenter := notifier.NewPresenter(userRepo, cardRepo, commentRepo, stackRepo, renderer, cfg.SendersCaptionLimit)
	aggregator := notifier.NewAggregator(notificationRepo)
	gate := notifier.NewGate(notifier.GateConfig{
		VotesInterval: cfg.PushVotesInterval,
		MaxDevices:    cfg.MaxPushDevices,
	}, deviceRepo, notificationRepo, voteRepo, transport, presenter)

	processor := notifier.NewProcessor(activityRepo, userRepo, aggregator, gate)
	processor.Register(models.ActionCardCreate, notifier.NewCardCreate(cardRepo, stackRepo, subscriptionRepo))
	processor.Register(models.ActionCardUpVote, notifier.NewCardVote(cardRepo))
	processor.Register(models.ActionCardDownVote, notifier.NewCardVote(cardRepo))
	processor.Register(models.ActionCommentCreate, notifier.NewCommentCreate(commentRepo, cardRepo))
	processor.Register(models.ActionCommentUpVote, notifier.NewCommentVote(commentRepo))
	processor.Register(models.ActionCardFlag, notifier.NewCardFlag())
	processor.Register(models.ActionSubscriptionCreate, notifier.NewSubscriptionCreate(stackRepo))
	if err := processor.ValidateRegistry(); err != nil {
		log.Fatalf("Notifier registry incomplete: %v", err)
	}

	tracker := notifier.NewTracker(activityRepo, pool)
	notifier.RegisterTaskHandlers(pool, processor, deviceRepo, endpoints)
	log.Println("Notification pipeline configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deviceRepo, pool, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	stackHandler := handlers.NewStackHandler(stackRepo, subscriptionRepo, tracker)
	stackHandler.RegisterStackRoutes(api)

	cardHandler := handlers.NewCardHandler(cardRepo, stackRepo, voteRepo, flagRepo, tracker, hashids)
	cardHandler.RegisterCardRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, cardRepo, voteRepo, tracker, hashids)
	commentHandler.RegisterCommentRoutes(api)

	deviceHandler := handlers.NewDeviceHandler(deviceRepo, pool)
	deviceHandler.RegisterDeviceRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, presenter)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Println("All routes configured.")
}
