package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine is the simulation core: per-symbol price processes, synthetic depth
// ladders, the order lifecycle state machine, the position ledger and the
// performance counters, behind one query/command surface.
type Engine struct {
	cfg   Config
	clock Clock
	rng   *lockedRand

	startTime time.Time
	symbols   []string
	states    map[string]*symbolState

	ordersMu sync.RWMutex
	orders   map[string]*Order
	orderSeq []*Order

	ledger  *Ledger
	metrics *metrics

	runMu   sync.Mutex
	running bool
	driver  Timer
}

func New(cfg Config) (*Engine, error) {
	if cfg.Clock == nil {
		cfg.Clock = NewRealClock()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock.Now().UnixNano()
	}

	now := cfg.Clock.Now()
	e := &Engine{
		cfg:       cfg,
		clock:     cfg.Clock,
		rng:       newLockedRand(seed),
		startTime: now,
		symbols:   append([]string(nil), cfg.Symbols...),
		states:    make(map[string]*symbolState, len(cfg.Symbols)),
		orders:    make(map[string]*Order),
	}

	// symbols initialize in slice order so a fixed seed reproduces the
	// exact same session
	for _, symbol := range e.symbols {
		e.states[symbol] = newSymbolState(symbol, cfg, e.rng, now)
	}

	e.ledger = NewLedger(e)
	e.metrics = newMetrics(now, cfg.MetricsWindow)
	return e, nil
}

// Start launches the periodic price driver. Safe to call once; subsequent
// calls are no-ops until Stop.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.driver = e.clock.AfterFunc(e.cfg.TickPeriod, e.tickCycle)

	log.Info().
		Int("symbols", len(e.symbols)).
		Dur("tick_period", e.cfg.TickPeriod).
		Msg("Simulation engine started")
}

// Stop halts the price driver and outstanding resolution timers. State is
// retained; Start resumes the feed.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return
	}
	e.running = false
	if e.driver != nil {
		e.driver.Stop()
	}
	e.runMu.Unlock()

	e.stopOrderTimers()
	log.Info().Msg("Simulation engine stopped")
}

func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}

// tickCycle advances every symbol one step and reschedules itself while the
// engine runs. Order resolution never blocks this path: resolutions run on
// their own timers.
func (e *Engine) tickCycle() {
	wallStart := time.Now()
	now := e.clock.Now()

	for _, symbol := range e.symbols {
		e.states[symbol].tick(e.cfg, e.rng, now)
	}

	e.metrics.observeTick(time.Since(wallStart), e.rng.uniform(1, 6))

	e.runMu.Lock()
	if e.running {
		e.driver = e.clock.AfterFunc(e.cfg.TickPeriod, e.tickCycle)
	}
	e.runMu.Unlock()
}

func (e *Engine) ListSymbols() []string {
	return append([]string(nil), e.symbols...)
}

func (e *Engine) GetQuote(symbol string) (Quote, bool) {
	state, ok := e.states[symbol]
	if !ok {
		return Quote{}, false
	}
	return state.snapshotQuote(), true
}

// Quotes returns every symbol's quote in configured symbol order.
func (e *Engine) Quotes() []Quote {
	out := make([]Quote, 0, len(e.symbols))
	for _, symbol := range e.symbols {
		out = append(out, e.states[symbol].snapshotQuote())
	}
	return out
}

func (e *Engine) GetOrderBook(symbol string) (OrderBookSnapshot, bool) {
	state, ok := e.states[symbol]
	if !ok {
		return OrderBookSnapshot{}, false
	}
	return state.snapshotBook(symbol), true
}

// GetCandles returns up to limit recent candles, oldest first; limit <= 0
// returns the full retained history.
func (e *Engine) GetCandles(symbol string, limit int) ([]Candle, bool) {
	state, ok := e.states[symbol]
	if !ok {
		return nil, false
	}
	return state.snapshotCandles(limit), true
}

func (e *Engine) GetPositions() map[string]Position {
	return e.ledger.Positions()
}

func (e *Engine) GetMetrics() PerformanceSnapshot {
	return e.metrics.snapshot(e.clock.Now())
}

// LastPrice implements PriceSource for the ledger.
func (e *Engine) LastPrice(symbol string) (float64, bool) {
	state, ok := e.states[symbol]
	if !ok {
		return 0, false
	}
	return state.lastPrice(), true
}

func (e *Engine) Uptime() time.Duration {
	return e.clock.Now().Sub(e.startTime)
}
