package engine

import (
	"math/rand"
	"sync"
)

// lockedRand serializes access to a single seeded rand.Rand so every
// stochastic draw in the engine comes from one reproducible stream.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int63n(n)
}

// uniform returns a draw from [lo, hi).
func (r *lockedRand) uniform(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// symmetric returns a draw from [-bound, +bound].
func (r *lockedRand) symmetric(bound float64) float64 {
	return (r.Float64()*2 - 1) * bound
}
