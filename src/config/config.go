package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"feed-sim/src/engine"
)

// Config is the full application configuration: server and logging settings
// plus every simulator knob. Values load from an optional YAML file, then
// environment variables override, then defaults fill the gaps.
type Config struct {
	Server struct {
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"logging"`

	Simulation struct {
		Symbols         []string `yaml:"symbols"`
		InitialPriceMin float64  `yaml:"initial_price_min"`
		InitialPriceMax float64  `yaml:"initial_price_max"`
		Volatility      float64  `yaml:"volatility"`
		Spread          float64  `yaml:"spread"`
		DepthLevels     int      `yaml:"depth_levels"`
		DepthIncrement  float64  `yaml:"depth_increment"`
		MinDepthSize    int64    `yaml:"min_depth_size"`
		TickPeriodMS    int      `yaml:"tick_period_ms"`
		CandleIntervalS int      `yaml:"candle_interval_s"`
		CandleHistory   int      `yaml:"candle_history"`

		MarketFillProbability float64 `yaml:"market_fill_probability"`
		LimitFillProbability  float64 `yaml:"limit_fill_probability"`
		ResolveDelayMinMS     int     `yaml:"resolve_delay_min_ms"`
		ResolveDelayMaxMS     int     `yaml:"resolve_delay_max_ms"`
		SlippageBound         float64 `yaml:"slippage_bound"`
		CancelProbability     float64 `yaml:"cancel_probability"`
		MaxResolveAttempts    int     `yaml:"max_resolve_attempts"`

		Seed int64 `yaml:"seed"`
	} `yaml:"simulation"`

	RateLimit struct {
		Disabled    bool   `yaml:"disabled"`
		MaxRequests int    `yaml:"max_requests"`
		Window      string `yaml:"window"`
	} `yaml:"rate_limit"`
}

// Load reads path if it exists, applies environment overrides and validates.
// An empty path or a missing file yields pure defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = "1s"
	}
}

func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port %q is not numeric", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RateLimit.Window); err != nil {
		return fmt.Errorf("rate limit window: %w", err)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate limit max requests must be positive")
	}
	// engine-level knobs get validated by engine.Config itself
	ec := c.Engine()
	return ec.Validate()
}

// Engine overlays the simulation section onto engine.DefaultConfig. A zero
// YAML value means "keep the default"; use the engine API directly for
// knobs that must be literally zero (e.g. fill probabilities in tests).
func (c *Config) Engine() engine.Config {
	s := c.Simulation
	ec := engine.DefaultConfig()

	if len(s.Symbols) > 0 {
		ec.Symbols = s.Symbols
	}
	if s.InitialPriceMin != 0 {
		ec.InitialPriceMin = s.InitialPriceMin
	}
	if s.InitialPriceMax != 0 {
		ec.InitialPriceMax = s.InitialPriceMax
	}
	if s.Volatility != 0 {
		ec.Volatility = s.Volatility
	}
	if s.Spread != 0 {
		ec.Spread = s.Spread
	}
	if s.DepthLevels != 0 {
		ec.DepthLevels = s.DepthLevels
	}
	if s.DepthIncrement != 0 {
		ec.DepthIncrement = s.DepthIncrement
	}
	if s.MinDepthSize != 0 {
		ec.MinDepthSize = s.MinDepthSize
	}
	if s.TickPeriodMS != 0 {
		ec.TickPeriod = time.Duration(s.TickPeriodMS) * time.Millisecond
	}
	if s.CandleIntervalS != 0 {
		ec.CandleInterval = time.Duration(s.CandleIntervalS) * time.Second
	}
	if s.CandleHistory != 0 {
		ec.CandleHistory = s.CandleHistory
	}
	if s.MarketFillProbability != 0 {
		ec.MarketFillProbability = s.MarketFillProbability
	}
	if s.LimitFillProbability != 0 {
		ec.LimitFillProbability = s.LimitFillProbability
	}
	if s.ResolveDelayMinMS != 0 {
		ec.ResolveDelayMin = time.Duration(s.ResolveDelayMinMS) * time.Millisecond
	}
	if s.ResolveDelayMaxMS != 0 {
		ec.ResolveDelayMax = time.Duration(s.ResolveDelayMaxMS) * time.Millisecond
	}
	if s.SlippageBound != 0 {
		ec.SlippageBound = s.SlippageBound
	}
	if s.CancelProbability != 0 {
		ec.CancelProbability = s.CancelProbability
	}
	ec.MaxResolveAttempts = s.MaxResolveAttempts
	ec.Seed = s.Seed
	return ec
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

func (c *Config) RateLimitWindow() time.Duration {
	d, err := time.ParseDuration(c.RateLimit.Window)
	if err != nil {
		return time.Second
	}
	return d
}

// overrideWithEnv lets the environment win over the config file, matching
// how the service is tuned in deployment.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		cfg.Server.ShutdownTimeout = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.Seed = parsed
		}
	}
	if v := os.Getenv("SIM_TICK_PERIOD_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Simulation.TickPeriodMS = parsed
		}
	}
	if os.Getenv("RATE_LIMIT_DISABLED") == "1" {
		cfg.RateLimit.Disabled = true
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.RateLimit.MaxRequests = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Window = v
		}
	}
}
