package router

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/feedback-go-api/internal/config"
	"github.com/noah-isme/feedback-go-api/internal/handler"
	"github.com/noah-isme/feedback-go-api/internal/observability"
	"github.com/noah-isme/feedback-go-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	FeedbackHandler *handler.FeedbackHandler
	FeedbackService service.FeedbackService
	// SubmitLimiter runs in front of both submit routes when set.
	SubmitLimiter fiber.Handler
	// ListGuards protect the feedback listing, typically JWT plus a role check.
	ListGuards []fiber.Handler
	// StoreConnected feeds the connectivity gauge exposed on /metrics.
	StoreConnected func() bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	health := handler.HealthCheck(cfg, deps.FeedbackService)
	app.Get("/health", health)
	app.Get("/metrics", observability.MetricsHandler(deps.StoreConnected))

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", health)

	limiter := deps.SubmitLimiter
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.FeedbackHandler != nil {
		app.Post("/submit", limiter, deps.FeedbackHandler.Submit)

		feedbackGroup := api.Group("/feedback")
		feedbackGroup.Post("", limiter)
		deps.FeedbackHandler.Register(feedbackGroup, deps.ListGuards...)
	}

	if info, err := os.Stat(cfg.PublicDir); err == nil && info.IsDir() {
		app.Static("/", cfg.PublicDir, fiber.Static{Index: "index.html"})
	}
}
