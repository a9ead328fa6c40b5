package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// FeedSource reports whether the simulation feed is live.
type FeedSource interface {
	Running() bool
}

// EngineGate rejects API traffic with 503 while the simulation engine is
// stopped, so the display layer distinguishes "feed down" from empty data.
// Health stays reachable either way.
func EngineGate(feed FeedSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}

		if !feed.Running() {
			log.Warn().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Request rejected: simulation engine is stopped")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "Service unavailable",
				"message": "The simulation engine is not running.",
			})
		}

		return c.Next()
	}
}
