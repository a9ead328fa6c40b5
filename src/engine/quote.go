package engine

import (
	"sync"
	"time"
)

// priceFloor keeps the simulated price strictly positive no matter how many
// adverse perturbations land in a row.
const priceFloor = 0.01

type Quote struct {
	Symbol        string
	Price         float64
	Bid           float64
	Ask           float64
	Volume        int64
	Change        float64
	ChangePercent float64
	High24h       float64
	Low24h        float64
	LastUpdate    time.Time
}

// symbolState holds everything owned by a single symbol: its quote, the
// synthetic depth ladder and the candle accumulator. All three are guarded
// by one mutex so snapshot readers never observe a half-applied tick.
type symbolState struct {
	mu          sync.Mutex
	quote       Quote
	sessionOpen float64
	book        *depthBook
	candles     *candleLog
}

func newSymbolState(symbol string, cfg Config, rng *lockedRand, now time.Time) *symbolState {
	base := rng.uniform(cfg.InitialPriceMin, cfg.InitialPriceMax)
	half := base * cfg.Spread / 2

	s := &symbolState{
		quote: Quote{
			Symbol:     symbol,
			Price:      base,
			Bid:        base - half,
			Ask:        base + half,
			Volume:     rng.Int63n(1_000_000),
			High24h:    base * 1.05,
			Low24h:     base * 0.95,
			LastUpdate: now,
		},
		sessionOpen: base,
		book:        newDepthBook(cfg, rng),
		candles:     newCandleLog(cfg.CandleInterval, cfg.CandleHistory),
	}
	s.book.rebuild(base, cfg, rng, now)
	return s
}

// tick advances the quote one step, refreshes the depth ladder from the new
// mid and feeds the candle accumulator.
func (s *symbolState) tick(cfg Config, rng *lockedRand, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := &s.quote

	next := q.Price * (1 + rng.symmetric(cfg.Volatility))
	if next < priceFloor {
		next = priceFloor
	}

	half := next * cfg.Spread / 2
	q.Price = next
	q.Bid = next - half
	q.Ask = next + half

	if next > q.High24h {
		q.High24h = next
	}
	if next < q.Low24h {
		q.Low24h = next
	}

	// change is always measured against the session open, which is fixed
	// at initialization and never mutated.
	q.Change = next - s.sessionOpen
	q.ChangePercent = q.Change / s.sessionOpen * 100

	volumeInc := rng.Int63n(1000)
	q.Volume += volumeInc
	q.LastUpdate = now

	s.book.rebuild(next, cfg, rng, now)
	s.candles.record(now, next, volumeInc)
}

func (s *symbolState) snapshotQuote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote
}

func (s *symbolState) snapshotBook(symbol string) OrderBookSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.snapshot(symbol)
}

func (s *symbolState) snapshotCandles(limit int) []Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candles.history(limit)
}

func (s *symbolState) lastPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Price
}
