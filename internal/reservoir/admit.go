package reservoir

import (
	"math"

	"govetachun/resvoir/pkg/utils"
)

// skipAheadWindow is the fixed window width the original sums weights
// over before falling back to an element-wise scan (w=32 in the source).
const skipAheadWindow = 32

// admitLocally runs step 1 of a batch: generate or skip-ahead-admit keys
// for every item in batch, bounding per-worker memory before the first
// global selection has ever run.
func (e *Engine) admitLocally(batch []Item) {
	pos := 0

	if e.threshold == 0 {
		bootstrapSize := utils.MaxInt64(3*e.k/2, e.k+500)
		for pos < len(batch) && e.tree.Size() < bootstrapSize {
			key := e.workerRNG.ExpFloat64() / batch[pos].Weight
			e.tree.Insert(key, batch[pos].ID)
			pos++
		}

		localTrimSize := utils.MaxInt64(11*e.k/10, e.k+250)
		var localThreshold float64
		for pos < len(batch) {
			if e.tree.Size() >= localTrimSize {
				localThreshold = e.tree.FindRank(e.k).Key()
				kept, _ := e.tree.SplitAtRank(e.k)
				e.tree = kept
			}
			utils.Assert(localThreshold > 0, "reservoir: local threshold must be established before skip-ahead admission")
			pos = e.insertSkipBatch(batch, pos, localThreshold)
		}
		return
	}

	for pos < len(batch) {
		pos = e.insertSkipBatch(batch, pos, e.threshold)
	}
}

// insertSkipBatch draws a single Exp(threshold) skip deviate and advances
// through batch[pos:] — in windows of skipAheadWindow first, then
// element-wise once the skip falls within the current window — until the
// cumulative weight exceeds it. The item at that position is admitted
// with a truncated-exponential key confined to (0, threshold) and
// insertion continues from the position right after it.
//
// This differs from the original's window walk, which subtracts a whole
// window's sum speculatively and then backtracks ("undoes the jump") one
// window if it overshot. Breaking out of the window loop before
// subtracting reaches the same final position without the backtrack —
// the running sum never needs undoing because it was never applied.
func (e *Engine) insertSkipBatch(batch []Item, pos int, threshold float64) int {
	skip := e.workerRNG.ExpFloat64() / threshold

	for pos+skipAheadWindow <= len(batch) {
		windowSum := sumWeights(batch[pos : pos+skipAheadWindow])
		if skip < windowSum {
			break
		}
		skip -= windowSum
		pos += skipAheadWindow
	}
	for pos < len(batch) {
		skip -= batch[pos].Weight
		if skip < 0 {
			break
		}
		pos++
	}
	if pos >= len(batch) {
		return len(batch)
	}

	w := batch[pos].Weight
	// exp(-threshold*w) underflows to 0 for large threshold*w; UniformRange
	// then just draws from [0, 1), which is exactly the fallback the
	// numerics note calls for, with no special case needed.
	minv := math.Exp(-threshold * w)
	u := e.workerRNG.UniformRange(minv, 1.0)
	key := -math.Log(u) / w
	e.tree.Insert(key, batch[pos].ID)
	return pos + 1
}

func sumWeights(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Weight
	}
	return sum
}
