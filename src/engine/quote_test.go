package engine

import (
	"testing"
	"time"
)

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *FakeClock) {
	t.Helper()

	clock := NewFakeClock(time.Unix(1_700_000_000, 0))
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Clock = clock
	if mutate != nil {
		mutate(&cfg)
	}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, clock
}

func TestTickInvariants(t *testing.T) {
	e, clock := newTestEngine(t, nil)

	for i := 0; i < 500; i++ {
		clock.Advance(e.cfg.TickPeriod)
		e.tickCycle()

		for _, symbol := range e.ListSymbols() {
			q, ok := e.GetQuote(symbol)
			if !ok {
				t.Fatalf("GetQuote(%q) returned no quote", symbol)
			}
			if !(q.Bid < q.Price && q.Price < q.Ask) {
				t.Fatalf("tick %d %s: bid/price/ask out of order: %v %v %v",
					i, symbol, q.Bid, q.Price, q.Ask)
			}
			if q.Price > q.High24h || q.Price < q.Low24h {
				t.Fatalf("tick %d %s: price %v outside [%v, %v]",
					i, symbol, q.Price, q.Low24h, q.High24h)
			}
			if q.Price < priceFloor {
				t.Fatalf("tick %d %s: price %v below floor", i, symbol, q.Price)
			}
		}
	}
}

func TestVolumeNeverDecreases(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	symbol := e.ListSymbols()[0]

	prev, _ := e.GetQuote(symbol)
	for i := 0; i < 200; i++ {
		e.tickCycle()
		q, _ := e.GetQuote(symbol)
		if q.Volume < prev.Volume {
			t.Fatalf("tick %d: volume decreased from %d to %d", i, prev.Volume, q.Volume)
		}
		prev = q
	}
}

func TestChangeMeasuredAgainstSessionOpen(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	symbol := e.ListSymbols()[0]
	sessionOpen := e.states[symbol].sessionOpen

	for i := 0; i < 300; i++ {
		e.tickCycle()
	}

	q, _ := e.GetQuote(symbol)
	if got, want := q.Change, q.Price-sessionOpen; !closeTo(got, want, 1e-9) {
		t.Errorf("change = %v, want price-sessionOpen = %v", got, want)
	}
	if got, want := q.ChangePercent, (q.Price-sessionOpen)/sessionOpen*100; !closeTo(got, want, 1e-9) {
		t.Errorf("changePercent = %v, want %v", got, want)
	}
}

func TestPriceClampedAtFloor(t *testing.T) {
	e, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Volatility = 0.9
		cfg.InitialPriceMin = 0.5
		cfg.InitialPriceMax = 1.0
	})

	for i := 0; i < 2000; i++ {
		e.tickCycle()
		for _, symbol := range e.ListSymbols() {
			q, _ := e.GetQuote(symbol)
			if q.Price < priceFloor {
				t.Fatalf("price %v fell below floor", q.Price)
			}
		}
	}
}

func TestQuoteIdempotentBetweenTicks(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.tickCycle()

	symbol := e.ListSymbols()[0]
	q1, _ := e.GetQuote(symbol)
	q2, _ := e.GetQuote(symbol)
	if q1 != q2 {
		t.Errorf("repeated GetQuote between ticks differs: %+v vs %+v", q1, q2)
	}
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if _, ok := e.GetQuote("NOPE"); ok {
		t.Error("expected no quote for unknown symbol")
	}
}

func closeTo(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
