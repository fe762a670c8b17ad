// Package geninput synthesizes the item weights fed into the reservoir
// engine during a benchmark run. Grounded on the generator selection in
// _examples/original_source/benchmark/res.cpp, which picks between a
// uniform and a Gaussian weight distribution by command-line flag; this
// package keeps that same two-generator vocabulary.
package geninput

import "govetachun/resvoir/internal/rng"

// Generator produces a stream of strictly positive weights.
type Generator interface {
	Next() float64
	Name() string
}

// Uniform draws weights uniformly from [lo, hi).
type Uniform struct {
	src    *rng.Source
	lo, hi float64
}

// NewUniform creates a uniform weight generator. lo must be > 0.
func NewUniform(src *rng.Source, lo, hi float64) *Uniform {
	if lo <= 0 {
		panic("geninput: uniform generator requires lo > 0")
	}
	return &Uniform{src: src, lo: lo, hi: hi}
}

func (u *Uniform) Next() float64 { return u.src.UniformRange(u.lo, u.hi) }
func (u *Uniform) Name() string  { return "uniform" }

// Gaussian draws weights from a normal distribution, resampling any draw
// that would land at or below minWeight so every weight stays strictly
// positive.
type Gaussian struct {
	src              *rng.Source
	mean, stddev     float64
	minWeight        float64
}

// NewGaussian creates a Gaussian weight generator.
func NewGaussian(src *rng.Source, mean, stddev float64) *Gaussian {
	return &Gaussian{src: src, mean: mean, stddev: stddev, minWeight: 1e-9}
}

func (g *Gaussian) Next() float64 {
	for {
		v := g.mean + g.stddev*g.src.NormFloat64()
		if v > g.minWeight {
			return v
		}
	}
}

func (g *Gaussian) Name() string { return "gaussian" }

// FillBatch draws n weights from gen.
func FillBatch(gen Generator, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = gen.Next()
	}
	return out
}
