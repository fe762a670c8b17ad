package fabric

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierReleasesOnlyAfterEveryoneArrives(t *testing.T) {
	const n = 8
	var arrivedBeforeRelease atomic.Int32

	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		arrivedBeforeRelease.Add(1)
		pe.Barrier()
		// By the time Barrier returns on any PE, every PE must have
		// incremented the counter already.
		if arrivedBeforeRelease.Load() != n {
			t.Errorf("pe %d: barrier released with only %d/%d arrived", pe.Rank(), arrivedBeforeRelease.Load(), n)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestBroadcastFloat64(t *testing.T) {
	const n = 5
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		var mine float64
		if pe.Rank() == 2 {
			mine = 42.5
		}
		got := pe.BroadcastFloat64(2, mine)
		assert.Equal(t, 42.5, got)
		return nil
	})
	require.NoError(t, err)
}

func TestAllReduceFloat64Ops(t *testing.T) {
	const n = 4
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		v := float64(pe.Rank() + 1) // 1,2,3,4

		sum := pe.AllReduceFloat64(OpSum, v)
		assert.Equal(t, 10.0, sum)

		min := pe.AllReduceFloat64(OpMin, v)
		assert.Equal(t, 1.0, min)

		max := pe.AllReduceFloat64(OpMax, v)
		assert.Equal(t, 4.0, max)
		return nil
	})
	require.NoError(t, err)
}

func TestAllReduceFloat64Vec(t *testing.T) {
	const n = 3
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		vec := []float64{float64(pe.Rank()), float64(pe.Rank() * 10)}
		out := pe.AllReduceFloat64Vec(OpSum, vec)
		assert.Equal(t, []float64{0 + 1 + 2, 0 + 10 + 20}, out)
		return nil
	})
	require.NoError(t, err)
}

func TestScanInt64IsInclusivePrefixSum(t *testing.T) {
	const n = 6
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		got := pe.ScanInt64(int64(pe.Rank() + 1))
		want := int64(0)
		for r := 0; r <= pe.Rank(); r++ {
			want += int64(r + 1)
		}
		assert.Equal(t, want, got)
		return nil
	})
	require.NoError(t, err)
}

func TestGatherAnyOnlyRootSeesResult(t *testing.T) {
	const n = 4
	const root = 1
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		values := []float64{float64(pe.Rank()), float64(pe.Rank())}
		out := pe.GatherAny(root, values)
		if pe.Rank() == root {
			require.Len(t, out, n)
			for r, v := range out {
				assert.Equal(t, []float64{float64(r), float64(r)}, v)
			}
		} else {
			assert.Nil(t, out)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestAllGatherInt64ReachesEveryPE(t *testing.T) {
	const n = 5
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		out := pe.AllGatherInt64(int64(pe.Rank() * 2))
		require.Len(t, out, n)
		for r, v := range out {
			assert.Equal(t, int64(r*2), v)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestAllReduceInt64Vec(t *testing.T) {
	const n = 3
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		vec := []int64{int64(pe.Rank()), 1}
		out := pe.AllReduceInt64Vec(OpSum, vec)
		assert.Equal(t, []int64{0 + 1 + 2, 3}, out)
		maxOut := pe.AllReduceInt64Vec(OpMax, vec)
		assert.Equal(t, []int64{2, 1}, maxOut)
		return nil
	})
	require.NoError(t, err)
}

func TestCollectivesAreOrderedByProgramOrder(t *testing.T) {
	const n = 16
	var stage atomic.Int32
	err := Run(context.Background(), n, func(ctx context.Context, pe *PE) error {
		pe.Barrier()
		if pe.Rank() == 0 {
			stage.Store(1)
		}
		a := pe.AllReduceInt64(OpSum, 1)
		pe.Barrier()
		b := pe.AllReduceInt64(OpMax, int64(pe.Rank()))
		assert.Equal(t, int64(n), a)
		assert.Equal(t, int64(n-1), b)
		return nil
	})
	require.NoError(t, err)
}
