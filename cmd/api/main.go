package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/feedback-go-api/internal/config"
	"github.com/noah-isme/feedback-go-api/internal/database"
	"github.com/noah-isme/feedback-go-api/internal/handler"
	"github.com/noah-isme/feedback-go-api/internal/middleware"
	"github.com/noah-isme/feedback-go-api/internal/models"
	"github.com/noah-isme/feedback-go-api/internal/repository"
	"github.com/noah-isme/feedback-go-api/internal/router"
	"github.com/noah-isme/feedback-go-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := database.NewHealth(logger)

	repo, closeStore := openStore(ctx, cfg, health, logger)
	defer closeStore()

	var publisher service.FeedbackPublisher = service.NewLogFeedbackPublisher(logger)
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, feedback events will only be logged")
		} else {
			defer func() { _ = conn.Drain() }()
			publisher = service.NewNATSFeedbackPublisher(conn, cfg.NATSSubject)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" && cfg.DedupeTTL > 0 {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL, cfg.StoreTimeout)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, duplicate guard disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	feedbackService := service.NewFeedbackService(repo, health, redisClient, cfg.DedupeTTL, publisher, logger)

	var listGuards []fiber.Handler
	if cfg.JWTSecret != "" {
		listGuards = append(listGuards,
			middleware.JWTProtected(cfg.JWTSecret),
			middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTeacher),
		)
	} else {
		logger.Warn().Msg("jwt secret not set, feedback listing is unauthenticated")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		FeedbackHandler: handler.NewFeedbackHandler(feedbackService, cfg.FeedbackListLimit, logger),
		FeedbackService: feedbackService,
		SubmitLimiter:   middleware.RateLimit("feedback_submit", cfg.RateLimitMax, cfg.RateLimitWindow),
		ListGuards:      listGuards,
		StoreConnected:  health.Connected,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

// openStore connects the configured backend and returns its repository together with a
// function releasing the connection. Health monitoring starts before it returns.
func openStore(ctx context.Context, cfg config.Config, health *database.Health, logger zerolog.Logger) (repository.FeedbackRepository, func()) {
	if cfg.StoreDriver == config.StoreMongo {
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.StoreTimeout, health, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create mongodb client")
		}

		collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		go func() {
			err := repository.EnsureFeedbackIndexesWhenReady(ctx, health.Ready(), collection)
			if err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("failed to ensure feedback indexes")
			}
		}()

		return repository.NewMongoFeedbackRepository(collection), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error().Err(err).Msg("mongodb disconnect failed")
			}
		}
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.StoreDriver == config.StorePostgres {
		db, err = database.ConnectPostgres(cfg.DatabaseURL)
	} else {
		db, err = database.ConnectSQLite(cfg.DatabaseURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Feedback{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database handle")
	}
	go database.WatchPing(ctx, sqlDB, cfg.HealthInterval, cfg.StoreTimeout, health)

	return repository.NewFeedbackRepository(db), func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error().Err(err).Msg("database close failed")
		}
	}
}
