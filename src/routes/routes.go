package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed-sim/src/config"
	"feed-sim/src/handlers"
	"feed-sim/src/middleware"
)

func SetupRoutes(app *fiber.App, h *handlers.SimHandler, cfg *config.Config) {
	app.Use(middleware.EngineGate(h.Engine))
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !cfg.RateLimit.Disabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimitWindow())
		api.Use(limiter.Middleware())
	}

	api.Get("/symbols", h.ListSymbols)
	api.Get("/quotes", h.GetQuotes)
	api.Get("/quotes/:symbol", h.GetQuote)
	api.Get("/orderbook/:symbol", h.GetOrderBook)
	api.Get("/candles/:symbol", h.GetCandles)

	api.Post("/orders", h.SubmitOrder)
	api.Get("/orders", h.ListOrders)
	api.Get("/orders/:id", h.GetOrder)
	api.Delete("/orders/:id", h.CancelOrder)

	api.Get("/positions", h.GetPositions)
	api.Get("/metrics", h.GetMetrics)

	app.Get("/health", h.HealthCheck)
}
