package engine

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Fill is the event a resolved order hands to the ledger.
type Fill struct {
	Symbol   string
	Side     OrderSide
	Quantity int64
	Price    float64
}

// Position is the read-only view of a symbol's net exposure. Market value
// and unrealized P&L are marked against the latest price at snapshot time.
type Position struct {
	Symbol        string
	NetQuantity   int64
	AvgPrice      float64
	MarketValue   float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// PriceSource supplies the latest price for marking open positions.
type PriceSource interface {
	LastPrice(symbol string) (float64, bool)
}

// Ledger owns all position state. Cost-basis arithmetic runs on decimals so
// repeated fills don't accumulate float drift.
type Ledger struct {
	mu        sync.Mutex
	positions map[string]*ledgerEntry
	prices    PriceSource
}

type ledgerEntry struct {
	net      int64
	avg      decimal.Decimal
	realized decimal.Decimal
}

func NewLedger(prices PriceSource) *Ledger {
	return &Ledger{
		positions: make(map[string]*ledgerEntry),
		prices:    prices,
	}
}

// Apply consumes one fill. Same-direction fills move the average price to
// the quantity-weighted average; reducing fills realize P&L on the closed
// portion; a sign flip opens the excess at the fill price.
func (l *Ledger) Apply(f Fill) error {
	if f.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidFill)
	}
	if f.Side != SideBuy && f.Side != SideSell {
		return fmt.Errorf("%w: side %q", ErrInvalidFill, f.Side)
	}
	if f.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidFill, f.Quantity)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidFill, f.Price)
	}

	signed := f.Quantity
	if f.Side == SideSell {
		signed = -f.Quantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.positions[f.Symbol]
	if !ok {
		entry = &ledgerEntry{}
		l.positions[f.Symbol] = entry
	}

	oldNet := entry.net
	newNet := oldNet + signed
	price := decimal.NewFromFloat(f.Price)
	qty := decimal.NewFromInt(f.Quantity)

	if oldNet == 0 || sameSign(oldNet, signed) {
		oldAbs := decimal.NewFromInt(abs64(oldNet))
		newAbs := decimal.NewFromInt(abs64(newNet))
		entry.avg = entry.avg.Mul(oldAbs).Add(price.Mul(qty)).Div(newAbs)
	} else {
		closed := f.Quantity
		if a := abs64(oldNet); a < closed {
			closed = a
		}
		direction := decimal.NewFromInt(1)
		if oldNet < 0 {
			direction = decimal.NewFromInt(-1)
		}
		entry.realized = entry.realized.Add(
			price.Sub(entry.avg).Mul(decimal.NewFromInt(closed)).Mul(direction))

		switch {
		case newNet == 0:
			entry.avg = decimal.Zero
		case sameSign(newNet, signed):
			// flipped: the excess opens a fresh position at the fill price
			entry.avg = price
		}
		// reduced but not closed: avg stays on the remaining quantity
	}

	entry.net = newNet
	return nil
}

// Positions returns a point-in-time copy of every position, marked at the
// latest known price.
func (l *Ledger) Positions() map[string]Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]Position, len(l.positions))
	for symbol, entry := range l.positions {
		out[symbol] = l.markLocked(symbol, entry)
	}
	return out
}

func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return l.markLocked(symbol, entry), true
}

func (l *Ledger) markLocked(symbol string, entry *ledgerEntry) Position {
	p := Position{
		Symbol:      symbol,
		NetQuantity: entry.net,
		AvgPrice:    entry.avg.InexactFloat64(),
		RealizedPnL: entry.realized.InexactFloat64(),
	}
	if entry.net != 0 {
		if px, ok := l.prices.LastPrice(symbol); ok {
			p.MarketValue = float64(entry.net) * px
			p.UnrealizedPnL = (px - p.AvgPrice) * float64(entry.net)
		}
	}
	return p
}

func sameSign(a, b int64) bool {
	return (a > 0) == (b > 0)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
