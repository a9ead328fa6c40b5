package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderType string

const (
	TypeMarket OrderType = "market"
	TypeLimit  OrderType = "limit"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"
	// StatusPartial is part of the status vocabulary for API compatibility
	// but resolution always fills the full quantity, so it is never set.
	StatusPartial OrderStatus = "partial"
)

// OrderSpec is a submission request before validation.
type OrderSpec struct {
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Quantity   int64
	LimitPrice float64
}

func (s OrderSpec) validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidOrder)
	}
	if s.Side != SideBuy && s.Side != SideSell {
		return fmt.Errorf("%w: side must be buy or sell", ErrInvalidOrder)
	}
	if s.Type != TypeMarket && s.Type != TypeLimit {
		return fmt.Errorf("%w: type must be market or limit", ErrInvalidOrder)
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if s.Type == TypeLimit && s.LimitPrice <= 0 {
		return fmt.Errorf("%w: limit price must be positive for limit orders", ErrInvalidOrder)
	}
	return nil
}

type Order struct {
	ID             string
	Symbol         string
	Side           OrderSide
	Type           OrderType
	Quantity       int64
	LimitPrice     float64
	Status         OrderStatus
	SubmittedAt    time.Time
	FillPrice      float64
	FilledQuantity int64

	attempts int
	timer    Timer
}

// SubmitOrder validates the spec, stores the order as pending and schedules
// its first resolution attempt after a randomized delay. It never blocks on
// resolution.
func (e *Engine) SubmitOrder(spec OrderSpec) (string, error) {
	if err := spec.validate(); err != nil {
		return "", err
	}
	if _, ok := e.states[spec.Symbol]; !ok {
		return "", fmt.Errorf("%w: unknown symbol %q", ErrInvalidOrder, spec.Symbol)
	}

	now := e.clock.Now()
	order := &Order{
		ID:          uuid.New().String(),
		Symbol:      spec.Symbol,
		Side:        spec.Side,
		Type:        spec.Type,
		Quantity:    spec.Quantity,
		LimitPrice:  spec.LimitPrice,
		Status:      StatusPending,
		SubmittedAt: now,
	}

	e.ordersMu.Lock()
	e.orders[order.ID] = order
	e.orderSeq = append(e.orderSeq, order)
	order.timer = e.scheduleResolve(order.ID)
	e.ordersMu.Unlock()

	e.metrics.observeSubmit(now)

	log.Info().
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Str("type", string(order.Type)).
		Int64("quantity", order.Quantity).
		Float64("limit_price", order.LimitPrice).
		Msg("Order submitted")

	return order.ID, nil
}

func (e *Engine) scheduleResolve(orderID string) Timer {
	delay := e.cfg.ResolveDelayMin
	if span := e.cfg.ResolveDelayMax - e.cfg.ResolveDelayMin; span > 0 {
		delay += time.Duration(e.rng.Int63n(int64(span) + 1))
	}
	return e.clock.AfterFunc(delay, func() { e.resolveOrder(orderID) })
}

// resolveOrder runs one resolution attempt. Exactly one of resolution and
// user cancel wins a pending order: both transition under ordersMu, and the
// loser observes a non-pending status and no-ops.
func (e *Engine) resolveOrder(orderID string) {
	e.ordersMu.Lock()
	order, ok := e.orders[orderID]
	if !ok || order.Status != StatusPending {
		e.ordersMu.Unlock()
		return
	}
	order.attempts++

	fillProb := e.cfg.LimitFillProbability
	if order.Type == TypeMarket {
		fillProb = e.cfg.MarketFillProbability
	}

	if e.rng.Float64() < fillProb {
		price := order.LimitPrice
		if order.Type == TypeMarket {
			price = e.states[order.Symbol].lastPrice() + e.rng.symmetric(e.cfg.SlippageBound)
			if price < priceFloor {
				price = priceFloor
			}
		}
		order.Status = StatusFilled
		order.FillPrice = price
		order.FilledQuantity = order.Quantity
		fill := Fill{
			Symbol:   order.Symbol,
			Side:     order.Side,
			Quantity: order.Quantity,
			Price:    price,
		}
		e.ordersMu.Unlock()

		if err := e.ledger.Apply(fill); err != nil {
			// unreachable given submission validation
			log.Error().Err(err).Str("order_id", orderID).Msg("Ledger rejected engine fill")
		}
		e.metrics.observeFill()

		log.Info().
			Str("order_id", orderID).
			Str("symbol", fill.Symbol).
			Float64("fill_price", price).
			Int64("quantity", fill.Quantity).
			Msg("Order filled")
		return
	}

	exhausted := e.cfg.MaxResolveAttempts > 0 && order.attempts >= e.cfg.MaxResolveAttempts
	if exhausted || e.rng.Float64() < e.cfg.CancelProbability {
		order.Status = StatusCancelled
		e.ordersMu.Unlock()

		e.metrics.observeCancel()
		log.Info().
			Str("order_id", orderID).
			Bool("attempts_exhausted", exhausted).
			Msg("Order cancelled by resolution")
		return
	}

	// stays pending, eligible for another attempt
	order.timer = e.scheduleResolve(orderID)
	e.ordersMu.Unlock()
}

// CancelOrder transitions a pending order to cancelled. It returns false for
// unknown orders and for orders already in a terminal state.
func (e *Engine) CancelOrder(orderID string) bool {
	e.ordersMu.Lock()
	order, ok := e.orders[orderID]
	if !ok || order.Status != StatusPending {
		e.ordersMu.Unlock()
		return false
	}
	order.Status = StatusCancelled
	if order.timer != nil {
		order.timer.Stop()
	}
	e.ordersMu.Unlock()

	e.metrics.observeCancel()
	log.Info().Str("order_id", orderID).Msg("Order cancelled")
	return true
}

// ListOrders returns copies of all orders in submission order.
func (e *Engine) ListOrders() []Order {
	e.ordersMu.RLock()
	defer e.ordersMu.RUnlock()

	out := make([]Order, 0, len(e.orderSeq))
	for _, order := range e.orderSeq {
		out = append(out, *order)
	}
	return out
}

func (e *Engine) GetOrder(orderID string) (Order, bool) {
	e.ordersMu.RLock()
	defer e.ordersMu.RUnlock()

	order, ok := e.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *order, true
}

// OpenOrders counts orders still pending.
func (e *Engine) OpenOrders() int {
	e.ordersMu.RLock()
	defer e.ordersMu.RUnlock()

	open := 0
	for _, order := range e.orderSeq {
		if order.Status == StatusPending {
			open++
		}
	}
	return open
}

// stopOrderTimers cancels every outstanding resolution timer; pending orders
// stay pending. Called from Stop.
func (e *Engine) stopOrderTimers() {
	e.ordersMu.Lock()
	defer e.ordersMu.Unlock()

	for _, order := range e.orderSeq {
		if order.Status == StatusPending && order.timer != nil {
			order.timer.Stop()
		}
	}
}
