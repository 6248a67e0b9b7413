package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackjudge-api/internal/config"
	"github.com/noah-isme/hackjudge-api/internal/handler"
	"github.com/noah-isme/hackjudge-api/internal/middleware"
	"github.com/noah-isme/hackjudge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GenerationHandler  *handler.GenerationHandler
	LeaderboardHandler *handler.LeaderboardHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Artifact generation. Enqueueing is limited per user, organizer role only.
	if deps.GenerationHandler != nil {
		artifacts := api.Group("/artifacts", jwtMiddleware, middleware.RequireRole("organizer", "admin"))
		artifacts.Use("/generate", middleware.RateLimit("artifact_generate", 10, time.Minute))
		deps.GenerationHandler.Register(artifacts)
	}

	// Leaderboard is readable by any authenticated user.
	if deps.LeaderboardHandler != nil {
		hackathons := api.Group("/hackathons", jwtMiddleware)
		deps.LeaderboardHandler.Register(hackathons)
	}
}
