package selection

import (
	"sort"

	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/otree"
	"govetachun/resvoir/internal/rng"
	"govetachun/resvoir/pkg/utils"
)

// localExclusiveOffset returns, given every PE's local bracket size (in
// rank order), how many elements the PEs before this one hold — the same
// "inclusive prefix sum, then subtract your own contribution" trick
// spec.md's tie-resolution step is built on, generalized here to resolve
// ownership of any global index rather than just a tie at one pivot.
func localExclusiveOffset(rank int, sizes []int64) int64 {
	var exclusive int64
	for r := 0; r < rank; r++ {
		exclusive += sizes[r]
	}
	return exclusive
}

// fetchGlobalRank returns the value at bracket-relative global rank
// targetRank. Exactly one PE owns it; every other PE contributes zero to
// the all-reduce, which only works because every key in this module is
// strictly positive (positive weights, positive exponential-clock keys).
func fetchGlobalRank(pe *fabric.PE, tree *otree.Tree, startRank, localSize, targetRank int64) float64 {
	sizes := pe.AllGatherInt64(localSize)
	exclusive := localExclusiveOffset(pe.Rank(), sizes)

	var contribution float64
	if targetRank >= exclusive && targetRank < exclusive+localSize {
		it := tree.FindRank(startRank + (targetRank - exclusive))
		contribution = it.Key()
	}
	return pe.AllReduceFloat64(fabric.OpSum, contribution)
}

// fetchPivotValues is fetchGlobalRank batched over several target ranks
// in one collective round trip instead of one per pivot.
func fetchPivotValues(pe *fabric.PE, tree *otree.Tree, startRank, localSize int64, indices []int64) []float64 {
	sizes := pe.AllGatherInt64(localSize)
	exclusive := localExclusiveOffset(pe.Rank(), sizes)

	contributions := make([]float64, len(indices))
	for j, idx := range indices {
		if idx >= exclusive && idx < exclusive+localSize {
			it := tree.FindRank(startRank + (idx - exclusive))
			contributions[j] = it.Key()
		}
	}
	return pe.AllReduceFloat64Vec(fabric.OpSum, contributions)
}

// drawPivotIndices picks numPivots distinct bracket-relative global
// indices to use as pivot candidates this round, biased toward whichever
// end of [kmin, kmax] is closer to the bracket's edge (Case 1: kmin is
// closer to the bracket's start, draw offsets from there via the
// geometric distribution's natural bias toward small values; Case 2:
// kmax is closer to the bracket's end, mirror the draw from there). This
// concentrates probing power where the target is actually likely to be,
// instead of spreading pivots uniformly over a bracket that may be mostly
// irrelevant to [kmin, kmax].
func drawPivotIndices(shared *rng.Source, globalSize, kmin, kmax int64, numPivots int) ([]int64, bool) {
	if int64(numPivots) > globalSize {
		numPivots = int(globalSize)
	}
	distToLow := kmin
	distToHigh := globalSize - 1 - kmax
	case1 := distToLow <= distToHigh

	p := float64(numPivots) / float64(globalSize)
	if p > 1 {
		p = 1
	}

	seen := make(map[int64]bool, numPivots)
	indices := make([]int64, 0, numPivots)
	for len(indices) < numPivots && len(indices) < int(globalSize) {
		g := shared.Geometric(p)
		var idx int64
		if case1 {
			idx = g
			if idx >= globalSize {
				idx = globalSize - 1
			}
		} else {
			idx = globalSize - 1 - g
			if idx < 0 {
				idx = 0
			}
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices, case1
}

// localBoundsForPivots returns, for each (sorted, ascending) pivot value,
// the count of this PE's bracket-local elements that are <= it.
func localBoundsForPivots(tree *otree.Tree, startRank, endRank int64, pivots []float64) []int64 {
	out := make([]int64, len(pivots))
	for j, piv := range pivots {
		r, _ := tree.RankOfUpperBound(piv)
		switch {
		case r < startRank:
			r = startRank
		case r > endRank:
			r = endRank
		}
		out[j] = r - startRank
	}
	return out
}

// decideSlot finds how many of the (ascending) global bounds are <= kmin
// and how many are <= kmax; when the two counts agree, [kmin, kmax] sits
// entirely within one pivot-delimited slot and the bracket narrows
// cleanly to it. When they disagree, the target range straddles a pivot
// boundary and the narrowed bracket spans both slots — still strictly
// smaller than the bracket this round started with, as long as at least
// one pivot produced a nontrivial bound.
func decideSlot(globalBounds []int64, kmin, kmax int64) (loCount, hiCount int) {
	for loCount < len(globalBounds) && globalBounds[loCount] <= kmin {
		loCount++
	}
	for hiCount < len(globalBounds) && globalBounds[hiCount] <= kmax {
		hiCount++
	}
	return loCount, hiCount
}

// computeLocalRank resolves ties at the cutoff value so that every PE can
// call otree.SplitAtRank(localRank) and keep exactly wantRank+1 items
// globally — spec.md's tie-resolution step. Elements strictly below
// threshold are always kept; of the elements equal to threshold (which
// may be spread across several PEs), only the first few are kept, taken
// in ascending PE rank order via an inclusive prefix-sum scan over each
// PE's local tie count, until the global quota is exhausted.
func computeLocalRank(pe *fabric.PE, tree *otree.Tree, threshold float64, wantRank int64) int64 {
	belowLocal, _ := tree.RankOfLowerBound(threshold)
	atMostLocal, _ := tree.RankOfUpperBound(threshold)
	tieLocal := atMostLocal - belowLocal

	globalBelow := pe.AllReduceInt64(fabric.OpSum, belowLocal)
	tieCumulative := pe.ScanInt64(tieLocal)
	tieExclusive := tieCumulative - tieLocal

	remaining := wantRank + 1 - globalBelow
	admitted := utils.ClampInt64(remaining-tieExclusive, 0, tieLocal)
	return belowLocal + admitted
}
