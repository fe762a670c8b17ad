// Package selection implements the distributed approximate multi-selection
// protocol this module uses to find weighted reservoir sampling's global
// cutoff: given every PE's local order-statistic tree, find the value (or
// pair of values, when a tie spans several elements) at a target global
// rank range, without ever gathering the data onto one PE.
//
// Grounded on _examples/original_source/reservoir/select_helpers.hpp and
// select_driver.hpp's round loop: each round draws a handful of pivots from
// a bracket shared across PEs, computes their exact global rank via an
// all-reduce, and narrows the bracket to whichever pivot-delimited slot
// contains the target range. Two differences from the original, recorded
// in the design ledger: pivot global bounds are computed exactly via one
// more all-reduce rather than estimated per-PE, and MPI's rank-scoped
// communicator is replaced by internal/fabric's in-process one.
package selection

import (
	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/otree"
	"govetachun/resvoir/internal/rng"
	"govetachun/resvoir/pkg/errors"
	"govetachun/resvoir/pkg/utils"
)

// Bracket is the half-open range [StartRank, EndRank) of one PE's own tree
// that selection is still searching within. Selection never mutates the
// tree — it only narrows which slice of it remains in play.
type Bracket struct {
	StartRank int64
	EndRank   int64
}

func (b Bracket) size() int64 { return b.EndRank - b.StartRank }

// DefaultTerminationSize is the global bracket size at or below which
// selection stops narrowing and resolves the answer by exact fetch
// instead of drawing another round of pivots — below this size the
// all-reduce round trips cost more than just fetching the answer.
const DefaultTerminationSize = 64

// maxNoProgressRetries bounds Open Question (a): how many consecutive
// no-progress rounds a multi-pivot search tolerates before falling back
// to single-pivot. The fallback lasts until a round makes progress, which
// resets the count and returns to numPivots. Single-pivot always makes
// progress (a median-ish split strictly shrinks the bracket, barring the
// degenerate case of every remaining key being identical), so it is the
// guaranteed-terminating fallback.
const maxNoProgressRetries = 4

// maxTotalRounds is a hard backstop against a search that never
// converges.
// The original has no equivalent; it is added here because an infinite
// round loop with no test harness to catch it in this exercise is worse
// than a documented failure mode.
const maxTotalRounds = 128

// Result is the outcome of a Select call: the bracket every PE narrowed
// down to, the (possibly still > 1 wide, on a tie) final target range
// within it, and the value(s) found there.
type Result struct {
	Bracket     Bracket
	KMin        int64
	KMax        int64
	ValueAtKMin float64
	ValueAtKMax float64
	// LocalRank is this PE's rank argument to otree.SplitAtRank that keeps
	// exactly the original kmax+1 smallest items globally, with ties at
	// the cutoff value resolved deterministically across PEs. This is the
	// (iter, local_rank) pair spec.md's ReservoirEngine batch step needs
	// from SelectionProtocol — iter is implicit (FindRank(LocalRank)).
	LocalRank int64
	Stats     Stats
}

// Multi runs the multi-pivot variant, drawing numPivots pivot candidates
// per round.
func Multi(pe *fabric.PE, tree *otree.Tree, bracket Bracket, kmin, kmax int64, shared *rng.Source, numPivots int) (Result, error) {
	return run(pe, tree, bracket, kmin, kmax, shared, numPivots)
}

// Single runs the single-pivot variant — Multi with numPivots fixed at 1.
func Single(pe *fabric.PE, tree *otree.Tree, bracket Bracket, kmin, kmax int64, shared *rng.Source) (Result, error) {
	return run(pe, tree, bracket, kmin, kmax, shared, 1)
}

func run(pe *fabric.PE, tree *otree.Tree, bracket Bracket, kmin, kmax int64, shared *rng.Source, numPivots int) (Result, error) {
	utils.Assert(numPivots >= 1, "selection: numPivots must be >= 1")
	utils.Assert(kmin >= 0 && kmin <= kmax, "selection: requires 0 <= kmin <= kmax")

	var stats Stats
	retries := 0
	originalKmax := kmax

	for {
		localSize := bracket.size()
		globalSize := pe.AllReduceInt64(fabric.OpSum, localSize)
		utils.Assert(kmax < globalSize, "selection: kmax out of range for current bracket")

		if globalSize <= DefaultTerminationSize {
			break
		}

		pivots := numPivots
		if retries >= maxNoProgressRetries {
			pivots = 1
			stats.FellBackToSingle = true
		}

		indices, case1 := drawPivotIndices(shared, globalSize, kmin, kmax, pivots)
		pivotValues := fetchPivotValues(pe, tree, bracket.StartRank, localSize, indices)
		localBounds := localBoundsForPivots(tree, bracket.StartRank, bracket.EndRank, pivotValues)
		globalBounds := pe.AllReduceInt64Vec(fabric.OpSum, localBounds)

		loCount, hiCount := decideSlot(globalBounds, kmin, kmax)

		var lowBoundGlobal, lowBoundLocal int64
		if loCount > 0 {
			lowBoundGlobal = globalBounds[loCount-1]
			lowBoundLocal = localBounds[loCount-1]
		}
		highBoundGlobal, highBoundLocal := globalSize, localSize
		if hiCount < len(globalBounds) {
			highBoundGlobal = globalBounds[hiCount]
			highBoundLocal = localBounds[hiCount]
		}

		stats.recordRound(globalSize, case1, len(indices))

		// Hit test: a pivot whose run of equal keys covers every rank in
		// [kmin, kmax] settles the search; computeLocalRank below splits
		// that run across PEs.
		lowerLocal := make([]int64, len(pivotValues))
		for j, piv := range pivotValues {
			r, _ := tree.RankOfLowerBound(piv)
			lowerLocal[j] = utils.ClampInt64(r, bracket.StartRank, bracket.EndRank) - bracket.StartRank
		}
		lowerGlobal := pe.AllReduceInt64Vec(fabric.OpSum, lowerLocal)
		hit := false
		for j := range lowerGlobal {
			hit = hit || (lowerGlobal[j] <= kmin && globalBounds[j] > kmax)
		}
		if hit {
			break
		}

		if stats.Rounds > maxTotalRounds {
			return Result{}, errors.NewSelectionError("selection did not converge within the round budget", nil)
		}

		if highBoundGlobal-lowBoundGlobal == globalSize {
			retries++
			stats.recordRetry()
			continue
		}
		retries = 0

		bracket = Bracket{
			StartRank: bracket.StartRank + lowBoundLocal,
			EndRank:   bracket.StartRank + highBoundLocal,
		}
		kmin -= lowBoundGlobal
		kmax -= lowBoundGlobal
	}

	localSize := bracket.size()
	valAtMin := fetchGlobalRank(pe, tree, bracket.StartRank, localSize, kmin)
	valAtMax := valAtMin
	if kmax != kmin {
		valAtMax = fetchGlobalRank(pe, tree, bracket.StartRank, localSize, kmax)
	}

	localRank := computeLocalRank(pe, tree, valAtMax, originalKmax)

	return Result{
		Bracket:     bracket,
		KMin:        kmin,
		KMax:        kmax,
		ValueAtKMin: valAtMin,
		ValueAtKMax: valAtMax,
		LocalRank:   localRank,
		Stats:       stats,
	}, nil
}
