package gather

import (
	"context"
	"io"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/geninput"
	"govetachun/resvoir/internal/rng"
)

func makeBatch(gen geninput.Generator, n int) []Item {
	batch := make([]Item, n)
	for i := 0; i < n; i++ {
		batch[i] = Item{Weight: gen.Next(), ID: int32(i)}
	}
	return batch
}

func TestInsertKeepsExactlyKAtRoot(t *testing.T) {
	const n = 4
	const k = 15

	rootSize := -1
	thresholds := make([]float64, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		logger := log.New(io.Discard)
		e := New(pe, k, 777, logger)
		gen := geninput.NewUniform(rng.PerWorker(13, pe.Rank()), 1, 200)

		for b := 0; b < 3; b++ {
			batch := makeBatch(gen, 500)
			if _, err := e.Insert(batch); err != nil {
				return err
			}
		}

		thresholds[pe.Rank()] = e.Threshold()
		if pe.Rank() == Root {
			rootSize = len(e.kept)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, k, rootSize)

	first := thresholds[0]
	for _, th := range thresholds[1:] {
		assert.InDelta(t, first, th, 1e-9)
	}
}

func TestSampleOnlyYieldsAtRoot(t *testing.T) {
	const n = 3
	const k = 5

	nonRootCounts := make([]int, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		e := New(pe, k, 9, log.New(io.Discard))
		gen := geninput.NewGaussian(rng.PerWorker(3, pe.Rank()), 10, 2)
		_, err := e.Insert(makeBatch(gen, 100))
		if err != nil {
			return err
		}

		var count int
		var keys []float64
		e.Sample(func(key float64, id int32) {
			count++
			keys = append(keys, key)
		})
		if pe.Rank() != Root {
			nonRootCounts[pe.Rank()] = count
		} else {
			assert.LessOrEqual(t, count, k)
			assert.True(t, sort.Float64sAreSorted(keys))
		}
		return nil
	})
	require.NoError(t, err)

	for rank, count := range nonRootCounts {
		if rank == Root {
			continue
		}
		assert.Equal(t, 0, count)
	}
}

func TestInsertRejectsNonPositiveWeight(t *testing.T) {
	err := fabric.Run(context.Background(), 1, func(ctx context.Context, pe *fabric.PE) error {
		e := New(pe, 10, 1, log.New(io.Discard))
		assert.Panics(t, func() {
			_, _ = e.Insert([]Item{{Weight: -1, ID: 1}})
		})
		return nil
	})
	require.NoError(t, err)
}
