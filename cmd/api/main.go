package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/GDSC-UTSC/gdg-website/internal/config"
	"github.com/GDSC-UTSC/gdg-website/internal/database"
	"github.com/GDSC-UTSC/gdg-website/internal/docstore"
	"github.com/GDSC-UTSC/gdg-website/internal/handler"
	"github.com/GDSC-UTSC/gdg-website/internal/middleware"
	"github.com/GDSC-UTSC/gdg-website/internal/repository"
	"github.com/GDSC-UTSC/gdg-website/internal/router"
	"github.com/GDSC-UTSC/gdg-website/internal/service"
	"github.com/GDSC-UTSC/gdg-website/pkg/ai"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "reviewer").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := docstore.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate document store")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	generator, err := ai.NewGenerator(context.Background(), ai.ProviderConfig{
		Provider:      cfg.AIProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Temperature:   cfg.AITemperature,
		Logger:        logger,
	})
	if err != nil {
		// Reviews answer 500 until a model is configured; health and listing keep working.
		logger.Error().Err(err).Str("provider", cfg.AIProvider).Msg("language model not configured")
		generator = nil
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := docstore.NewGormStore(db)

	positionRepo := repository.NewPositionRepository(store, validate)
	applicationRepo := repository.NewApplicationRepository(store, validate, logger)
	reviewRepo := repository.NewReviewRepository(store)

	responseValidator, err := service.NewResponseValidator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile review response schema")
	}
	orchestrator := service.NewReviewOrchestrator(generator, responseValidator, cfg.AttemptTimeout, logger)
	events := service.NewReviewEventPublisher(redisClient, cfg.EventsChannel, natsConn, logger)
	reviewService := service.NewReviewService(positionRepo, applicationRepo, reviewRepo, orchestrator, events, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, CORSOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		ReviewHandler:   handler.NewReviewHandler(reviewService, logger),
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		AdminMiddleware: middleware.RequireAdmin(),
		RateLimiter:     middleware.RateLimit("review", cfg.RateLimitMax, cfg.RateLimitWindow),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("review service listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
