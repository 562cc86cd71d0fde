package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// correlationMiddleware tags every request with an id that is echoed back to
// the caller and attached to log events downstream.
func correlationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationId := c.Get(fiber.HeaderXRequestID)
		if len(correlationId) == 0 {
			correlationId = uuid.NewString()
		}
		c.Locals("correlation_id", correlationId)
		c.Set(fiber.HeaderXRequestID, correlationId)
		return c.Next()
	}
}
