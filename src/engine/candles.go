package engine

import "time"

type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// candleLog accumulates ticks into fixed-interval OHLCV candles and keeps a
// bounded history. Guarded by the owning symbolState's mutex.
type candleLog struct {
	interval time.Duration
	limit    int
	current  Candle
	open     bool
	closed   []Candle
}

func newCandleLog(interval time.Duration, limit int) *candleLog {
	return &candleLog{interval: interval, limit: limit}
}

func (l *candleLog) record(now time.Time, price float64, volume int64) {
	bucket := now.Truncate(l.interval)

	if l.open && bucket.After(l.current.Timestamp) {
		l.closed = append(l.closed, l.current)
		if len(l.closed) > l.limit {
			l.closed = l.closed[len(l.closed)-l.limit:]
		}
		l.open = false
	}

	if !l.open {
		l.current = Candle{
			Timestamp: bucket,
			Open:      price,
			High:      price,
			Low:       price,
		}
		l.open = true
	}

	if price > l.current.High {
		l.current.High = price
	}
	if price < l.current.Low {
		l.current.Low = price
	}
	l.current.Close = price
	l.current.Volume += volume
}

// history returns the most recent candles, oldest first, including the one
// still accumulating.
func (l *candleLog) history(limit int) []Candle {
	n := len(l.closed)
	if l.open {
		n++
	}
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Candle, 0, n)
	skip := len(l.closed)
	if l.open {
		skip++
	}
	skip -= n

	for _, c := range l.closed {
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, c)
	}
	if l.open && skip <= 0 {
		out = append(out, l.current)
	}
	return out
}
