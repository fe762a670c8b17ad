package reservoir

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

func TestInsertConvergesToExactSampleSizeAcrossBatches(t *testing.T) {
	const n = 3
	const k = 20

	sizes := make([]int64, n)
	thresholds := make([]float64, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		logger := log.New(io.Discard)
		e := New(pe, k, 4242, 4, logger)
		gen := geninput.NewUniform(rng.PerWorker(99, pe.Rank()), 1, 500)

		for b := 0; b < 3; b++ {
			batch := makeBatch(gen, 2000)
			if _, err := e.Insert(batch); err != nil {
				return err
			}
		}

		sizes[pe.Rank()] = e.Size()
		thresholds[pe.Rank()] = e.Threshold()

		var keys []float64
		e.Sample(func(key float64, id int32) {
			keys = append(keys, key)
		})
		if !sort.Float64sAreSorted(keys) {
			t.Errorf("pe %d: sample keys not sorted", pe.Rank())
		}
		for _, key := range keys {
			if key > e.Threshold()+1e-9 {
				t.Errorf("pe %d: sampled key %v exceeds threshold %v", pe.Rank(), key, e.Threshold())
			}
		}
		return nil
	})
	require.NoError(t, err)

	var total int64
	for _, s := range sizes {
		total += s
	}
	assert.Equal(t, int64(k), total)

	first := thresholds[0]
	for _, th := range thresholds[1:] {
		assert.InDelta(t, first, th, 1e-9)
	}
}

func TestInsertRejectsNonPositiveWeight(t *testing.T) {
	err := fabric.Run(context.Background(), 1, func(ctx context.Context, pe *fabric.PE) error {
		e := New(pe, 10, 1, 2, log.New(io.Discard))
		assert.Panics(t, func() {
			_, _ = e.Insert([]Item{{Weight: 0, ID: 1}})
		})
		return nil
	})
	require.NoError(t, err)
}

func TestSampleDoesNotMutateTree(t *testing.T) {
	err := fabric.Run(context.Background(), 1, func(ctx context.Context, pe *fabric.PE) error {
		e := New(pe, 10, 2, 2, log.New(io.Discard))
		gen := geninput.NewGaussian(rng.PerWorker(5, 0), 50, 10)
		_, err := e.Insert(makeBatch(gen, 200))
		require.NoError(t, err)

		before := e.Size()
		var count int
		e.Sample(func(key float64, id int32) { count++ })
		var countAgain int
		e.Sample(func(key float64, id int32) { countAgain++ })

		assert.Equal(t, before, e.Size())
		assert.Equal(t, int(before), count)
		assert.Equal(t, count, countAgain)
		return nil
	})
	require.NoError(t, err)
}
