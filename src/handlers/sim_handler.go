package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"feed-sim/src/engine"
	"feed-sim/src/models"
)

// SimHandler exposes the engine's query and command surface over HTTP for
// the display layer.
type SimHandler struct {
	Engine *engine.Engine
}

func NewSimHandler(e *engine.Engine) *SimHandler {
	return &SimHandler{Engine: e}
}

func (h *SimHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	orderID, err := h.Engine.SubmitOrder(engine.OrderSpec{
		Symbol:     req.Symbol,
		Side:       engine.OrderSide(req.Side),
		Type:       engine.OrderType(req.Type),
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
	})
	if err != nil {
		if errors.Is(err, engine.ErrInvalidOrder) {
			log.Warn().
				Err(err).
				Str("symbol", req.Symbol).
				Str("ip", c.IP()).
				Msg("Order rejected")
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: err.Error(),
			})
		}
		log.Error().Err(err).Str("symbol", req.Symbol).Msg("Error submitting order")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.SubmitOrderResponse{
		OrderID: orderID,
		Status:  string(engine.StatusPending),
	})
}

func (h *SimHandler) CancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	if !h.Engine.CancelOrder(orderID) {
		// unknown id and already-terminal orders look the same to callers
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found or not cancellable",
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  string(engine.StatusCancelled),
	})
}

func (h *SimHandler) GetOrder(c *fiber.Ctx) error {
	order, ok := h.Engine.GetOrder(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(orderToResponse(order))
}

func (h *SimHandler) ListOrders(c *fiber.Ctx) error {
	orders := h.Engine.ListOrders()
	out := make([]models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderToResponse(order))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *SimHandler) ListSymbols(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.SymbolsResponse{
		Symbols: h.Engine.ListSymbols(),
	})
}

func (h *SimHandler) GetQuotes(c *fiber.Ctx) error {
	quotes := h.Engine.Quotes()
	out := make([]models.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, quoteToResponse(q))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *SimHandler) GetQuote(c *fiber.Ctx) error {
	quote, ok := h.Engine.GetQuote(c.Params("symbol"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Unknown symbol",
		})
	}
	return c.Status(fiber.StatusOK).JSON(quoteToResponse(quote))
}

func (h *SimHandler) GetOrderBook(c *fiber.Ctx) error {
	snap, ok := h.Engine.GetOrderBook(c.Params("symbol"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Unknown symbol",
		})
	}

	resp := models.OrderBookResponse{
		Symbol:     snap.Symbol,
		Bids:       make([]models.OrderBookLevelInfo, 0, len(snap.Bids)),
		Asks:       make([]models.OrderBookLevelInfo, 0, len(snap.Asks)),
		LastUpdate: snap.LastUpdate.UnixMilli(),
	}
	for _, lvl := range snap.Bids {
		resp.Bids = append(resp.Bids, models.OrderBookLevelInfo{
			Price:      lvl.Price,
			Size:       lvl.Size,
			OrderCount: lvl.OrderCount,
		})
	}
	for _, lvl := range snap.Asks {
		resp.Asks = append(resp.Asks, models.OrderBookLevelInfo{
			Price:      lvl.Price,
			Size:       lvl.Size,
			OrderCount: lvl.OrderCount,
		})
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *SimHandler) GetCandles(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid limit",
			})
		}
		limit = parsed
	}

	candles, ok := h.Engine.GetCandles(c.Params("symbol"), limit)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Unknown symbol",
		})
	}

	out := make([]models.CandleResponse, 0, len(candles))
	for _, cd := range candles {
		out = append(out, models.CandleResponse{
			Timestamp: cd.Timestamp.UnixMilli(),
			Open:      cd.Open,
			High:      cd.High,
			Low:       cd.Low,
			Close:     cd.Close,
			Volume:    cd.Volume,
		})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *SimHandler) GetPositions(c *fiber.Ctx) error {
	positions := h.Engine.GetPositions()
	out := make(map[string]models.PositionResponse, len(positions))
	for symbol, p := range positions {
		out[symbol] = models.PositionResponse{
			Symbol:        p.Symbol,
			NetQuantity:   p.NetQuantity,
			AvgPrice:      p.AvgPrice,
			MarketValue:   p.MarketValue,
			UnrealizedPnL: p.UnrealizedPnL,
			RealizedPnL:   p.RealizedPnL,
		}
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *SimHandler) GetMetrics(c *fiber.Ctx) error {
	m := h.Engine.GetMetrics()
	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		LatencyMs:       m.LatencyMs,
		OrdersPerSecond: m.OrdersPerSecond,
		FillRatePercent: m.FillRatePercent,
		TotalTrades:     m.TotalTrades,
		UptimeSeconds:   m.UptimeSeconds,
	})
}

func (h *SimHandler) HealthCheck(c *fiber.Ctx) error {
	status := "healthy"
	if !h.Engine.Running() {
		status = "stopped"
	}
	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        status,
		UptimeSeconds: int64(h.Engine.Uptime().Seconds()),
		Symbols:       len(h.Engine.ListSymbols()),
		OpenOrders:    h.Engine.OpenOrders(),
	})
}

func orderToResponse(o engine.Order) models.OrderResponse {
	return models.OrderResponse{
		OrderID:        o.ID,
		Symbol:         o.Symbol,
		Side:           string(o.Side),
		Type:           string(o.Type),
		Quantity:       o.Quantity,
		LimitPrice:     o.LimitPrice,
		Status:         string(o.Status),
		SubmittedAt:    o.SubmittedAt.UnixMilli(),
		FillPrice:      o.FillPrice,
		FilledQuantity: o.FilledQuantity,
	}
}

func quoteToResponse(q engine.Quote) models.QuoteResponse {
	return models.QuoteResponse{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Bid:           q.Bid,
		Ask:           q.Ask,
		Volume:        q.Volume,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High24h:       q.High24h,
		Low24h:        q.Low24h,
		LastUpdate:    q.LastUpdate.UnixMilli(),
	}
}
