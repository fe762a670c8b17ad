package gather

import "math"

const skipAheadWindow = 32

// admitLocally appends a key for every surviving item in batch to
// e.items, using full key generation before any threshold is known and
// skip-ahead admission afterward — the same two admission modes
// internal/reservoir uses, kept as an independent copy here because this
// baseline has no local pre-trim threshold of its own (it defers all
// selection to the gather step) and so never needs the local-λ branch.
func (e *Engine) admitLocally(batch []Item) {
	pos := 0
	if e.threshold == 0 {
		for pos < len(batch) {
			key := e.rng.ExpFloat64() / batch[pos].Weight
			e.items = append(e.items, keyed{Key: key, ID: batch[pos].ID})
			pos++
		}
		return
	}
	for pos < len(batch) {
		pos = e.insertSkipBatch(batch, pos)
	}
}

func (e *Engine) insertSkipBatch(batch []Item, pos int) int {
	skip := e.rng.ExpFloat64() / e.threshold

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
	minv := math.Exp(-e.threshold * w)
	u := e.rng.UniformRange(minv, 1.0)
	key := -math.Log(u) / w
	e.items = append(e.items, keyed{Key: key, ID: batch[pos].ID})
	return pos + 1
}

func sumWeights(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Weight
	}
	return sum
}
