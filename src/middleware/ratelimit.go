package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window per-client limiter for the command API.
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	windows map[string]*clientWindow
}

type clientWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		windows:     make(map[string]*clientWindow),
	}
}

func (rl *RateLimiter) Allow(clientID string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[clientID]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.windows[clientID] = &clientWindow{start: now, count: 1}
		rl.pruneLocked(now)
		return true
	}
	if w.count >= rl.maxRequests {
		return false
	}
	w.count++
	return true
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	for id, w := range rl.windows {
		if now.Sub(w.start) >= rl.window {
			delete(rl.windows, id)
		}
	}
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.Get("X-Forwarded-For")
		if clientID == "" {
			clientID = c.IP()
		}

		if !rl.Allow(clientID, time.Now()) {
			log.Warn().
				Str("client_ip", clientID).
				Str("path", c.Path()).
				Int("max_requests", rl.maxRequests).
				Msg("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Window", rl.window.String())
		return c.Next()
	}
}
