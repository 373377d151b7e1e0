// Package randutil wraps math/rand streams for safe sharing across
// goroutines. A *rand.Rand is not safe for concurrent use, so long-lived
// components that keep one seeded stream serialize every draw.
package randutil

import (
	"math/rand"
	"sync"
	"time"
)

// Locked guards one underlying *rand.Rand with a mutex. Draw order for a
// given seed is unchanged for single-goroutine callers, so seeded tests stay
// deterministic.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New wraps r. A nil r falls back to a time-seeded source.
func New(r *rand.Rand) *Locked {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Locked{r: r}
}

// Float64 returns a value in [0.0, 1.0).
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
