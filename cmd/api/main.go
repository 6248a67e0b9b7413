package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge-api/internal/config"
	"github.com/noah-isme/hackjudge-api/internal/database"
	"github.com/noah-isme/hackjudge-api/internal/handler"
	"github.com/noah-isme/hackjudge-api/internal/middleware"
	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/internal/repository"
	"github.com/noah-isme/hackjudge-api/internal/router"
	"github.com/noah-isme/hackjudge-api/internal/service"
	"github.com/noah-isme/hackjudge-api/internal/worker"
	"github.com/noah-isme/hackjudge-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Hackathon{}, &models.Team{}, &models.Submission{}, &models.Criterion{}, &models.Artifact{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional: the leaderboard falls back to computing
	// on every read, and completion events are simply not published.
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, leaderboard caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, completion events disabled")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	aiClient := ai.NewClient(ai.Config{
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		OpenAIModel:    cfg.OpenAIModel,
		GatewayAPIKey:  cfg.GatewayAPIKey,
		GatewayBaseURL: cfg.GatewayBaseURL,
		GatewayModel:   cfg.GatewayModel,
		MaxTokens:      cfg.AIMaxTokens,
		Temperature:    float32(cfg.AITemperature),
		Logger:         logger,
	})

	artifactRepo := repository.NewArtifactRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	teamRepo := repository.NewTeamRepository(db)

	generationService := service.NewGenerationService(artifactRepo, submissionRepo, criterionRepo, teamRepo, aiClient, logger, service.GenerationConfig{
		ProviderTimeout: cfg.GenerationTimeout,
	})
	leaderboardService := service.NewLeaderboardService(artifactRepo, teamRepo, redisClient, cfg.LeaderboardCacheTTL, logger)

	pool := worker.NewPool(generationService, leaderboardService, worker.NATSPublisher(natsConn), cfg.WorkerCount, cfg.QueueSize, logger)
	poolCtx, stopPool := context.WithCancel(context.Background())
	pool.Start(poolCtx)

	generationHandler := handler.NewGenerationHandler(generationService, pool, validate, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GenerationHandler:  generationHandler,
		LeaderboardHandler: leaderboardHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, pool, stopPool)
}

func waitForShutdown(app *fiber.App, pool *worker.Pool, stopPool context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	// Let in-flight generation jobs reach a terminal state before exiting.
	stopPool()
	pool.Wait()

	log.Println("server stopped")
}
