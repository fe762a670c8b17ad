package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedStreamsAreIdenticalAcrossWorkers(t *testing.T) {
	a := Shared(7)
	b := Shared(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestPerWorkerStreamsDiverge(t *testing.T) {
	a := PerWorker(7, 0)
	b := PerWorker(7, 1)
	same := true
	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	assert.False(t, same, "distinct ranks must not draw identical streams")
}

func TestPerWorkerIsReproducible(t *testing.T) {
	a := PerWorker(42, 3)
	b := PerWorker(42, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestFloat64IsWithinUnitInterval(t *testing.T) {
	s := PerWorker(1, 0)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		assert.True(t, v >= 0 && v < 1)
	}
}

func TestGeometricBoundaryProbabilities(t *testing.T) {
	s := PerWorker(1, 0)
	assert.Equal(t, int64(0), s.Geometric(1))
	assert.Equal(t, int64(1<<31-1), s.Geometric(0))
}

func TestGeometricMeanIsRoughlyOneOverPMinusOne(t *testing.T) {
	s := PerWorker(9, 5)
	const p = 0.2
	const trials = 20000
	var sum int64
	for i := 0; i < trials; i++ {
		sum += s.Geometric(p)
	}
	mean := float64(sum) / float64(trials)
	want := (1 - p) / p // mean of failures-before-success geometric distribution
	assert.InDelta(t, want, mean, want*0.1)
}
