// Package rng is this module's only source of randomness: a thin wrapper
// over math/rand/v2's PCG generator, exposing the uniform, exponential and
// Gaussian deviates the rest of the module treats the PRNG as a source of,
// plus the geometric draw the multi-pivot selection protocol needs for
// picking candidate pivots.
//
// PCG takes two 64-bit seed words (seed, sequence) and is designed to be
// split into many independent, reproducible streams from one root seed —
// exactly the "same seed across every worker for the selection protocol,
// a distinct seed per worker for everything else" discipline spec.md's
// design notes call for, without reaching for a non-stdlib PRNG this pack
// has no example of.
package rng

import (
	"math"
	"math/rand/v2"
)

// Source is one reproducible random stream.
type Source struct {
	r *rand.Rand
}

// New builds a stream directly from PCG's two seed words.
func New(seed, sequence uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, sequence))}
}

// Shared builds the stream every worker should see identically — used by
// the selection protocol's pivot draws, which must agree across all PEs
// because every PE fetches the values at the same drawn indices.
func Shared(rootSeed uint64) *Source {
	return New(rootSeed, 0)
}

// PerWorker builds a stream distinct per rank but reproducible given the
// same root seed and rank — used for input synthesis and skip-ahead key
// generation, where each worker must NOT draw the same numbers as its
// peers.
func PerWorker(rootSeed uint64, rank int) *Source {
	return New(rootSeed, uint64(rank)+1)
}

// Float64 returns a uniform deviate in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// UniformRange returns a uniform deviate in [lo, hi).
func (s *Source) UniformRange(lo, hi float64) float64 {
	return lo + s.r.Float64()*(hi-lo)
}

// ExpFloat64 returns an exponential deviate with rate 1 (mean 1),
// matching math/rand/v2's own convention; scale by 1/rate for other rates.
func (s *Source) ExpFloat64() float64 {
	return s.r.ExpFloat64()
}

// NormFloat64 returns a standard normal deviate.
func (s *Source) NormFloat64() float64 {
	return s.r.NormFloat64()
}

// IntN returns a uniform deviate in [0, n).
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// Geometric draws from the geometric distribution with success
// probability p: the number of failures before the first success,
// matching C++'s std::geometric_distribution (which
// ams_select_multi.hpp's pivot sampling is built on). p must be in
// (0, 1]; p <= 0 is treated as "never succeeds" and returns a very large
// count rather than looping forever.
func (s *Source) Geometric(p float64) int64 {
	if p >= 1 {
		return 0
	}
	if p <= 0 {
		return math.MaxInt32
	}
	u := s.r.Float64()
	for u == 0 {
		u = s.r.Float64()
	}
	return int64(math.Log(u) / math.Log(1-p))
}
