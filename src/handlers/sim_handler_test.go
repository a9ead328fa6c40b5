package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"feed-sim/src/config"
	"feed-sim/src/engine"
	"feed-sim/src/handlers"
	"feed-sim/src/models"
	"feed-sim/src/routes"
)

func setupTestServer(t *testing.T, mutate func(*engine.Config)) (*fiber.App, *engine.Engine, *engine.FakeClock) {
	t.Helper()

	clock := engine.NewFakeClock(time.Unix(1_700_000_000, 0))
	ec := engine.DefaultConfig()
	ec.Seed = 1
	ec.Clock = clock
	if mutate != nil {
		mutate(&ec)
	}

	sim, err := engine.New(ec)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	sim.Start()
	t.Cleanup(sim.Stop)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.RateLimit.Disabled = true

	app := fiber.New()
	routes.SetupRoutes(app, handlers.NewSimHandler(sim), cfg)
	return app, sim, clock
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestSubmitOrderEndpoint(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		Symbol:   "AAPL",
		Side:     "buy",
		Type:     "market",
		Quantity: 3,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	body := decode[models.SubmitOrderResponse](t, resp)
	if body.OrderID == "" {
		t.Error("response missing order id")
	}
	if body.Status != "pending" {
		t.Errorf("status = %q, want pending", body.Status)
	}
}

func TestSubmitOrderRejectsInvalid(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	cases := []models.SubmitOrderRequest{
		{Symbol: "AAPL", Side: "buy", Type: "limit", Quantity: 0, LimitPrice: 100},
		{Symbol: "AAPL", Side: "buy", Type: "limit", Quantity: 10},
		{Symbol: "AAPL", Side: "maybe", Type: "market", Quantity: 10},
		{Symbol: "UNKNOWN", Side: "buy", Type: "market", Quantity: 10},
	}

	for _, req := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("request %+v: status = %d, want 400", req, resp.StatusCode)
		}
	}
}

func TestSubmitOrderMalformedJSON(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte("{nope")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app, _, clock := setupTestServer(t, func(cfg *engine.Config) {
		cfg.MarketFillProbability = 1
		cfg.SlippageBound = 0
	})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		Symbol: "AAPL", Side: "buy", Type: "market", Quantity: 7,
	})
	submitted := decode[models.SubmitOrderResponse](t, resp)

	clock.Advance(200 * time.Millisecond)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+submitted.OrderID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order status = %d, want 200", resp.StatusCode)
	}
	order := decode[models.OrderResponse](t, resp)
	if order.Status != "filled" || order.FilledQuantity != 7 {
		t.Errorf("order = %+v, want filled quantity 7", order)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/positions", nil)
	positions := decode[map[string]models.PositionResponse](t, resp)
	if positions["AAPL"].NetQuantity != 7 {
		t.Errorf("AAPL position = %+v, want net 7", positions["AAPL"])
	}
}

func TestCancelOrderEndpoint(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		Symbol: "AAPL", Side: "sell", Type: "limit", Quantity: 2, LimitPrice: 500,
	})
	submitted := decode[models.SubmitOrderResponse](t, resp)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+submitted.OrderID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+submitted.OrderID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second cancel status = %d, want 404", resp.StatusCode)
	}
}

func TestCancelUnknownOrderEndpoint(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/orders/no-such-id", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestQuotesEndpoints(t *testing.T) {
	app, sim, clock := setupTestServer(t, nil)
	clock.Advance(time.Second)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/quotes", nil)
	quotes := decode[[]models.QuoteResponse](t, resp)
	if len(quotes) != len(sim.ListSymbols()) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(sim.ListSymbols()))
	}
	for _, q := range quotes {
		if !(q.Bid < q.Price && q.Price < q.Ask) {
			t.Errorf("%s: bid/price/ask out of order", q.Symbol)
		}
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/quotes/BTCUSD", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("single quote status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/quotes/NOPE", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown symbol status = %d, want 404", resp.StatusCode)
	}
}

func TestOrderBookEndpoint(t *testing.T) {
	app, _, clock := setupTestServer(t, nil)
	clock.Advance(time.Second)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/orderbook/ETHUSD", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	book := decode[models.OrderBookResponse](t, resp)
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		t.Fatal("empty book sides")
	}
	if book.Bids[0].Price >= book.Asks[0].Price {
		t.Error("best bid must be below best ask")
	}
}

func TestCandlesEndpoint(t *testing.T) {
	app, _, clock := setupTestServer(t, nil)
	clock.Advance(3 * time.Second)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/candles/TSLA?limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	candles := decode[[]models.CandleResponse](t, resp)
	if len(candles) == 0 || len(candles) > 2 {
		t.Errorf("got %d candles, want 1-2", len(candles))
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/candles/TSLA?limit=-1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app, _, clock := setupTestServer(t, func(cfg *engine.Config) {
		cfg.MarketFillProbability = 1
	})

	doJSON(t, app, http.MethodPost, "/api/v1/orders", models.SubmitOrderRequest{
		Symbol: "AAPL", Side: "buy", Type: "market", Quantity: 1,
	})
	clock.Advance(200 * time.Millisecond)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/metrics", nil)
	metrics := decode[models.MetricsResponse](t, resp)
	if metrics.TotalTrades != 1 {
		t.Errorf("total trades = %d, want 1", metrics.TotalTrades)
	}
	if metrics.FillRatePercent != 100 {
		t.Errorf("fill rate = %v, want 100", metrics.FillRatePercent)
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	app, sim, _ := setupTestServer(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/symbols", nil)
	body := decode[models.SymbolsResponse](t, resp)
	if len(body.Symbols) != len(sim.ListSymbols()) {
		t.Errorf("got %d symbols, want %d", len(body.Symbols), len(sim.ListSymbols()))
	}
}

func TestHealthEndpoint(t *testing.T) {
	app, _, _ := setupTestServer(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	health := decode[models.HealthResponse](t, resp)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
}

func TestEngineGateRejectsWhenStopped(t *testing.T) {
	app, sim, _ := setupTestServer(t, nil)
	sim.Stop()

	resp := doJSON(t, app, http.MethodGet, "/api/v1/quotes", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while engine stopped", resp.StatusCode)
	}

	// health must stay reachable
	resp = doJSON(t, app, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}
