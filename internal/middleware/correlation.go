package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderCorrelationID carries the request correlation identifier.
const HeaderCorrelationID = "X-Correlation-ID"

type correlationIDKey struct{}

// CorrelationID tags every request with a correlation identifier, taken from the caller when
// provided. The identifier is echoed in the response and attached to the request context
// together with a logger carrying it.
func CorrelationID(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if id == "" {
			id = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(HeaderCorrelationID, id)

		requestLogger := logger.With().Str("correlation_id", id).Logger()
		ctx := context.WithValue(c.UserContext(), correlationIDKey{}, id)
		c.SetUserContext(requestLogger.WithContext(ctx))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier from ctx, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
