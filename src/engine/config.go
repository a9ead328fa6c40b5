package engine

import (
	"fmt"
	"time"
)

// Config enumerates every tunable of the simulator. Start from
// DefaultConfig and override; Validate rejects incomplete configs, so an
// explicit zero (say, a zero fill probability) is never mistaken for unset.
type Config struct {
	// Symbols drives which instruments the engine simulates. Tick order
	// follows slice order, which keeps seeded runs reproducible.
	Symbols []string

	// InitialPriceMin/Max bound the random base price each symbol opens at.
	InitialPriceMin float64
	InitialPriceMax float64

	// Volatility is the half-width of the relative per-tick price
	// perturbation (0.002 = +/-0.2% per tick).
	Volatility float64

	// Spread is the relative bid/ask spread around the mid price.
	Spread float64

	// DepthLevels is the number of synthetic book levels per side.
	// DepthIncrement is the relative price step between adjacent levels.
	DepthLevels    int
	DepthIncrement float64

	// MinDepthSize floors every level's size so depth never disappears.
	MinDepthSize int64

	TickPeriod time.Duration

	// CandleInterval buckets ticks into OHLCV candles; CandleHistory caps
	// how many closed candles are retained per symbol.
	CandleInterval time.Duration
	CandleHistory  int

	MarketFillProbability float64
	LimitFillProbability  float64

	// ResolveDelayMin/Max bound the randomized latency before an order
	// resolution attempt.
	ResolveDelayMin time.Duration
	ResolveDelayMax time.Duration

	// SlippageBound is the absolute half-width of market-order slippage.
	SlippageBound float64

	// CancelProbability is the chance an unfilled resolution attempt
	// cancels the order instead of leaving it pending.
	CancelProbability float64

	// MaxResolveAttempts bounds how many resolution attempts an order gets
	// before it is auto-cancelled. 0 means retry until filled or cancelled.
	MaxResolveAttempts int

	// MetricsWindow is the trailing window for the orders-per-second rate.
	MetricsWindow time.Duration

	// Seed fixes the pseudo-random stream; 0 seeds from the clock.
	Seed int64

	// Clock may be replaced with a FakeClock for deterministic tests.
	Clock Clock
}

var defaultSymbols = []string{"BTCUSD", "ETHUSD", "AAPL", "GOOGL", "TSLA", "MSFT", "NVDA", "META"}

func DefaultConfig() Config {
	return Config{
		Symbols:               append([]string(nil), defaultSymbols...),
		InitialPriceMin:       100,
		InitialPriceMax:       1100,
		Volatility:            0.002,
		Spread:                0.001,
		DepthLevels:           20,
		DepthIncrement:        0.0001,
		MinDepthSize:          50,
		TickPeriod:            100 * time.Millisecond,
		CandleInterval:        time.Second,
		CandleHistory:         300,
		MarketFillProbability: 0.95,
		LimitFillProbability:  0.85,
		ResolveDelayMin:       50 * time.Millisecond,
		ResolveDelayMax:       150 * time.Millisecond,
		SlippageBound:         0.005,
		CancelProbability:     0.3,
		MetricsWindow:         10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("config: empty symbol")
		}
		if seen[s] {
			return fmt.Errorf("config: duplicate symbol %q", s)
		}
		seen[s] = true
	}
	if c.InitialPriceMin <= 0 || c.InitialPriceMax <= c.InitialPriceMin {
		return fmt.Errorf("config: initial price range [%v, %v) is invalid", c.InitialPriceMin, c.InitialPriceMax)
	}
	if c.Volatility <= 0 || c.Volatility >= 1 {
		return fmt.Errorf("config: volatility %v out of (0, 1)", c.Volatility)
	}
	if c.Spread <= 0 || c.Spread >= 1 {
		return fmt.Errorf("config: spread %v out of (0, 1)", c.Spread)
	}
	if c.DepthLevels <= 0 {
		return fmt.Errorf("config: depth levels must be positive")
	}
	if c.DepthIncrement <= 0 {
		return fmt.Errorf("config: depth increment must be positive")
	}
	if c.MinDepthSize <= 0 {
		return fmt.Errorf("config: min depth size must be positive")
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("config: tick period must be positive")
	}
	if c.CandleInterval <= 0 || c.CandleHistory <= 0 {
		return fmt.Errorf("config: candle interval and history must be positive")
	}
	if c.MarketFillProbability < 0 || c.MarketFillProbability > 1 {
		return fmt.Errorf("config: market fill probability %v out of [0, 1]", c.MarketFillProbability)
	}
	if c.LimitFillProbability < 0 || c.LimitFillProbability > 1 {
		return fmt.Errorf("config: limit fill probability %v out of [0, 1]", c.LimitFillProbability)
	}
	if c.ResolveDelayMin <= 0 || c.ResolveDelayMax < c.ResolveDelayMin {
		return fmt.Errorf("config: resolve delay bounds [%v, %v] are invalid", c.ResolveDelayMin, c.ResolveDelayMax)
	}
	if c.SlippageBound < 0 {
		return fmt.Errorf("config: slippage bound must be non-negative")
	}
	if c.CancelProbability < 0 || c.CancelProbability > 1 {
		return fmt.Errorf("config: cancel probability %v out of [0, 1]", c.CancelProbability)
	}
	if c.MaxResolveAttempts < 0 {
		return fmt.Errorf("config: max resolve attempts must be non-negative")
	}
	if c.MetricsWindow <= 0 {
		return fmt.Errorf("config: metrics window must be positive")
	}
	return nil
}
