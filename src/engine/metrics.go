package engine

import (
	"sync"
	"time"
)

// PerformanceSnapshot carries only derived counters; nothing in it is an
// independent random draw.
type PerformanceSnapshot struct {
	LatencyMs       float64
	OrdersPerSecond float64
	FillRatePercent float64
	TotalTrades     int64
	UptimeSeconds   float64
}

// metrics aggregates counters from the order lifecycle and the tick driver.
type metrics struct {
	mu          sync.Mutex
	startTime   time.Time
	window      time.Duration
	submits     []time.Time
	filled      int64
	cancelled   int64
	tickCostMs  float64
	feedDelayMs float64
}

func newMetrics(start time.Time, window time.Duration) *metrics {
	return &metrics{startTime: start, window: window}
}

func (m *metrics) observeSubmit(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submits = append(m.submits, now)
	m.pruneLocked(now)
}

func (m *metrics) observeFill() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filled++
}

func (m *metrics) observeCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled++
}

// observeTick records the measured cost of the latest tick cycle plus the
// synthetic feed-transport delay sampled by the driver.
func (m *metrics) observeTick(cost time.Duration, feedDelayMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickCostMs = float64(cost.Nanoseconds()) / 1e6
	m.feedDelayMs = feedDelayMs
}

func (m *metrics) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.window)
	drop := 0
	for drop < len(m.submits) && m.submits[drop].Before(cutoff) {
		drop++
	}
	if drop > 0 {
		m.submits = m.submits[drop:]
	}
}

func (m *metrics) snapshot(now time.Time) PerformanceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)

	snap := PerformanceSnapshot{
		LatencyMs:       m.tickCostMs + m.feedDelayMs,
		OrdersPerSecond: float64(len(m.submits)) / m.window.Seconds(),
		TotalTrades:     m.filled,
		UptimeSeconds:   now.Sub(m.startTime).Seconds(),
	}
	if resolved := m.filled + m.cancelled; resolved > 0 {
		snap.FillRatePercent = float64(m.filled) / float64(resolved) * 100
	}
	return snap
}
