// Package noise supplies the uniform random draws used to perturb forecasts.
package noise

import (
	"math/rand/v2"
	"sync"
)

// Source draws a value from [lo, hi].
type Source interface {
	Uniform(lo, hi float64) float64
}

type randSource struct{}

// New returns an unseeded source backed by the runtime generator.
func New() Source {
	return randSource{}
}

func (randSource) Uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

// Pinned always returns its own value, ignoring the bounds.
type Pinned float64

func (p Pinned) Uniform(lo, hi float64) float64 {
	return float64(p)
}

// Edge returns lo when Low is set and hi otherwise.
type Edge struct {
	Low bool
}

func (e Edge) Uniform(lo, hi float64) float64 {
	if e.Low {
		return lo
	}
	return hi
}

// Sequence replays the given fractions of the [lo, hi] span in order and
// wraps around when exhausted.
type Sequence struct {
	mu        sync.Mutex
	fractions []float64
	next      int
}

func NewSequence(fractions ...float64) *Sequence {
	return &Sequence{fractions: fractions}
}

func (s *Sequence) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fractions) == 0 {
		return lo
	}
	f := s.fractions[s.next%len(s.fractions)]
	s.next++
	return lo + f*(hi-lo)
}
