package engine

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock time so that every delay in the simulator
// (tick cadence, order resolution) can be driven by virtual time in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// FakeClock is a manually advanced Clock. Advance fires due callbacks
// synchronously on the calling goroutine, in deadline order, so tests
// observe a deterministic sequence of events.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	seq      int
	fn       func()
	stopped  bool
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		seq:      c.seq,
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves virtual time forward by d, firing every timer whose
// deadline falls within the window. Callbacks may schedule new timers;
// those fire too if they land inside the same window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		t := c.popDueLocked(target)
		if t == nil {
			break
		}
		c.now = t.deadline
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}

// popDueLocked removes and returns the earliest timer with deadline <= target,
// breaking ties by scheduling order.
func (c *FakeClock) popDueLocked(target time.Time) *fakeTimer {
	due := -1
	for i, t := range c.timers {
		if t.deadline.After(target) {
			continue
		}
		if due == -1 || earlier(t, c.timers[due]) {
			due = i
		}
	}
	if due == -1 {
		return nil
	}
	t := c.timers[due]
	t.stopped = true
	c.timers = append(c.timers[:due], c.timers[due+1:]...)
	return t
}

func earlier(a, b *fakeTimer) bool {
	if !a.deadline.Equal(b.deadline) {
		return a.deadline.Before(b.deadline)
	}
	return a.seq < b.seq
}

// PendingTimers reports how many callbacks are scheduled, for test assertions.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
