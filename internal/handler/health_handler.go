package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/feedback-go-api/internal/config"
	"github.com/noah-isme/feedback-go-api/internal/service"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck returns a handler that reports process and store liveness. It answers 200
// even while the store is down so the form stays reachable.
func HealthCheck(cfg config.Config, svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := svc.Health(c.UserContext())
		return c.Status(fiber.StatusOK).JSON(HealthResponse{
			Status:      status.Status,
			Database:    status.Database,
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		})
	}
}
