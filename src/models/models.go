package models

type SubmitOrderRequest struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Type       string  `json:"type"`
	Quantity   int64   `json:"quantity"`
	LimitPrice float64 `json:"limit_price,omitempty"` // required for limit, ignored for market
}

type SubmitOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type CancelOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Bid           float64 `json:"bid"`
	Ask           float64 `json:"ask"`
	Volume        int64   `json:"volume"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High24h       float64 `json:"high_24h"`
	Low24h        float64 `json:"low_24h"`
	LastUpdate    int64   `json:"last_update"` // unix timestamp in milliseconds
}

type OrderBookLevelInfo struct {
	Price      float64 `json:"price"`
	Size       int64   `json:"size"`
	OrderCount int     `json:"order_count"`
}

type OrderBookResponse struct {
	Symbol     string               `json:"symbol"`
	Bids       []OrderBookLevelInfo `json:"bids"` // sorted descending (best first)
	Asks       []OrderBookLevelInfo `json:"asks"` // sorted ascending (best first)
	LastUpdate int64                `json:"last_update"`
}

type OrderResponse struct {
	OrderID        string  `json:"order_id"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Type           string  `json:"type"`
	Quantity       int64   `json:"quantity"`
	LimitPrice     float64 `json:"limit_price,omitempty"`
	Status         string  `json:"status"`
	SubmittedAt    int64   `json:"submitted_at"`
	FillPrice      float64 `json:"fill_price,omitempty"`
	FilledQuantity int64   `json:"filled_quantity,omitempty"`
}

type PositionResponse struct {
	Symbol        string  `json:"symbol"`
	NetQuantity   int64   `json:"net_quantity"`
	AvgPrice      float64 `json:"avg_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	RealizedPnL   float64 `json:"realized_pnl"`
}

type CandleResponse struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

type MetricsResponse struct {
	LatencyMs       float64 `json:"latency_ms"`
	OrdersPerSecond float64 `json:"orders_per_second"`
	FillRatePercent float64 `json:"fill_rate_percent"`
	TotalTrades     int64   `json:"total_trades"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Symbols       int    `json:"symbols"`
	OpenOrders    int    `json:"open_orders"`
}

type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}
