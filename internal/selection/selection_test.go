package selection

import (
	"context"
	"math/rand/v2"
	"sort"
	"testing"

	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/otree"
	"govetachun/resvoir/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scatter splits a sorted slice of distinct values across n PEs, giving
// each PE a contiguous, disjoint, still-sorted run — enough to build a
// valid per-PE tree without needing real weighted sampling data.
func scatter(all []float64, n int) [][]float64 {
	out := make([][]float64, n)
	base := len(all) / n
	rem := len(all) % n
	pos := 0
	for i := 0; i < n; i++ {
		cnt := base
		if i < rem {
			cnt++
		}
		out[i] = append([]float64{}, all[pos:pos+cnt]...)
		pos += cnt
	}
	return out
}

func buildTree(values []float64) *otree.Tree {
	items := make([]otree.Item, len(values))
	for i, v := range values {
		items[i] = otree.Item{Key: v, Payload: int32(i)}
	}
	return otree.BulkLoad(otree.DefaultCapacity, otree.DefaultCapacity, items)
}

func TestMultiFindsExactOrderStatistic(t *testing.T) {
	const n = 5
	const total = 3000
	r := rand.New(rand.NewPCG(7, 7))
	values := make([]float64, total)
	seen := make(map[float64]bool)
	for i := range values {
		for {
			v := r.Float64()*1000 + 1
			if !seen[v] {
				seen[v] = true
				values[i] = v
				break
			}
		}
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	parts := scatter(sorted, n)

	for _, targetRank := range []int64{0, 1, total / 2, total - 2, total - 1} {
		want := sorted[targetRank]

		var results []Result
		results = make([]Result, n)
		err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
			tree := buildTree(parts[pe.Rank()])
			bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
			shared := rng.Shared(99)
			res, err := Multi(pe, tree, bracket, targetRank, targetRank, shared, 3)
			if err != nil {
				return err
			}
			results[pe.Rank()] = res
			return nil
		})
		require.NoError(t, err)

		for rank, res := range results {
			assert.InDelta(t, want, res.ValueAtKMin, 1e-9, "rank %d mismatch for target %d", rank, targetRank)
			assert.Equal(t, res.ValueAtKMin, res.ValueAtKMax)
		}
	}
}

func TestSingleFindsExactOrderStatistic(t *testing.T) {
	const n = 4
	const total = 800
	r := rand.New(rand.NewPCG(13, 13))
	values := make([]float64, total)
	for i := range values {
		values[i] = r.Float64()*500 + 1
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	parts := scatter(sorted, n)

	const targetRank = int64(200)
	want := sorted[targetRank]

	results := make([]Result, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		tree := buildTree(parts[pe.Rank()])
		bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
		shared := rng.Shared(4242)
		res, err := Single(pe, tree, bracket, targetRank, targetRank, shared)
		if err != nil {
			return err
		}
		results[pe.Rank()] = res
		return nil
	})
	require.NoError(t, err)

	for _, res := range results {
		assert.InDelta(t, want, res.ValueAtKMin, 1e-9)
	}
}

func TestMultiNarrowsBracketConsistentlyAcrossPEs(t *testing.T) {
	const n = 6
	const total = 5000
	r := rand.New(rand.NewPCG(21, 21))
	values := make([]float64, total)
	for i := range values {
		values[i] = r.Float64()*2000 + 1
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	parts := scatter(sorted, n)

	const kmin, kmax = int64(1000), int64(1010)

	results := make([]Result, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		tree := buildTree(parts[pe.Rank()])
		bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
		shared := rng.Shared(555)
		res, err := Multi(pe, tree, bracket, kmin, kmax, shared, 4)
		if err != nil {
			return err
		}
		results[pe.Rank()] = res
		return nil
	})
	require.NoError(t, err)

	// Every PE agrees on the narrowed global target range and boundary
	// values, since every collective round returns the same answer to
	// every PE and the shared RNG stream is identical everywhere.
	first := results[0]
	for _, res := range results[1:] {
		assert.Equal(t, first.KMin, res.KMin)
		assert.Equal(t, first.KMax, res.KMax)
		assert.Equal(t, first.ValueAtKMin, res.ValueAtKMin)
		assert.Equal(t, first.ValueAtKMax, res.ValueAtKMax)
	}
	assert.InDelta(t, sorted[kmin], first.ValueAtKMin, 1e-9)
	assert.InDelta(t, sorted[kmax], first.ValueAtKMax, 1e-9)
}

func TestLocalRankKeepsExactlyWantedCountWithDistinctKeys(t *testing.T) {
	const n = 5
	const total = 2000
	const k = 300 // keep ranks [0, k-1], i.e. kmax = k-1
	r := rand.New(rand.NewPCG(3, 3))
	values := make([]float64, total)
	seen := make(map[float64]bool)
	for i := range values {
		for {
			v := r.Float64()*1000 + 1
			if !seen[v] {
				seen[v] = true
				values[i] = v
				break
			}
		}
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	parts := scatter(sorted, n)

	localRanks := make([]int64, n)
	treeSizes := make([]int64, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		tree := buildTree(parts[pe.Rank()])
		bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
		shared := rng.Shared(77)
		res, err := Multi(pe, tree, bracket, int64(k-1), int64(k-1), shared, 4)
		if err != nil {
			return err
		}
		if res.LocalRank > 0 {
			assert.LessOrEqual(t, tree.FindRank(res.LocalRank-1).Key(), sorted[k-1]+1e-9)
		}
		if res.LocalRank < tree.Size() {
			assert.GreaterOrEqual(t, tree.FindRank(res.LocalRank).Key(), sorted[k-1]-1e-9)
		}
		localRanks[pe.Rank()] = res.LocalRank
		treeSizes[pe.Rank()] = tree.Size()
		return nil
	})
	require.NoError(t, err)

	var totalKept int64
	for i, r := range localRanks {
		assert.GreaterOrEqual(t, r, int64(0))
		assert.LessOrEqual(t, r, treeSizes[i])
		totalKept += r
	}
	assert.Equal(t, int64(k), totalKept)
}

func TestLocalRankResolvesTiesAcrossPEs(t *testing.T) {
	const n = 4
	// Every PE holds the same 50 distinct values plus a block of ties at
	// the cutoff value, so the k-th order statistic sits in the middle of
	// a run spread across every PE and the scan must split it exactly.
	base := make([]float64, 0, 200)
	for i := 0; i < 50; i++ {
		base = append(base, float64(i)+1)
	}
	tieValue := 25.5
	for i := 0; i < 40; i++ {
		base = append(base, tieValue)
	}
	sort.Float64s(base)
	parts := make([][]float64, n)
	for i := range parts {
		parts[i] = append([]float64{}, base...)
	}

	// 100 elements sit strictly below the tie value (25 per PE), so 120 of
	// the 160 tied elements must also be admitted to reach k.
	const k = 100 + 120

	localRanks := make([]int64, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		tree := buildTree(parts[pe.Rank()])
		bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
		shared := rng.Shared(88)
		res, err := Multi(pe, tree, bracket, int64(k-1), int64(k-1), shared, 2)
		if err != nil {
			return err
		}
		localRanks[pe.Rank()] = res.LocalRank
		return nil
	})
	require.NoError(t, err)

	var totalKept int64
	for _, r := range localRanks {
		totalKept += r
	}
	assert.Equal(t, int64(k), totalKept)
	// Ties are resolved in ascending PE rank order: PE 0 and 1 get their
	// full 40-tie allotment, PE 2 gets the remaining 40, PE 3 gets none.
	assert.Equal(t, []int64{65, 65, 65, 25}, localRanks)
}

func TestMultiHandlesGlobalSizeAtTerminationThreshold(t *testing.T) {
	const n = 3
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	parts := scatter(values, n)

	results := make([]Result, n)
	err := fabric.Run(context.Background(), n, func(ctx context.Context, pe *fabric.PE) error {
		tree := buildTree(parts[pe.Rank()])
		bracket := Bracket{StartRank: 0, EndRank: tree.Size()}
		shared := rng.Shared(1)
		res, err := Multi(pe, tree, bracket, 4, 4, shared, 2)
		if err != nil {
			return err
		}
		results[pe.Rank()] = res
		return nil
	})
	require.NoError(t, err)

	for _, res := range results {
		assert.Equal(t, values[4], res.ValueAtKMin)
	}
}
