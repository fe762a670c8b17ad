// Package reservoir implements ReservoirEngine: the per-worker owner of
// one order-statistic tree that turns a stream of (weight, id) batches
// into a weighted-without-replacement sample of fixed size k, using
// Efraimidis-Spirakis exponential-clock keys and the distributed
// selection protocol to agree on the global cutoff after each batch.
//
// Grounded on _examples/original_source/reservoir/reservoir.hpp's
// reservoir class — same four-step batch structure (admit, select,
// split, update threshold) and the same two-phase local admission
// (bootstrap by full key generation, then skip-ahead once a local or
// global threshold exists).
package reservoir

import (
	"time"

	"github.com/charmbracelet/log"

	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/otree"
	"govetachun/resvoir/internal/rng"
	"govetachun/resvoir/internal/selection"
	"govetachun/resvoir/pkg/errors"
	"govetachun/resvoir/pkg/utils"
)

// Item is one (weight, id) pair from the input stream.
type Item struct {
	Weight float64
	ID     int32
}

// Engine owns one worker's slice of the reservoir: its own tree, its own
// admission threshold, and the PRNG streams the batch algorithm needs.
type Engine struct {
	pe        *fabric.PE
	tree      *otree.Tree
	k         int64
	threshold float64
	batchID   int
	workerRNG *rng.Source
	sharedRNG *rng.Source
	numPivots int
	logger    *log.Logger
}

// New creates an Engine for one worker. seed is the user-supplied root
// seed; per the concurrency model, the worker's own PRNG stream is
// derived from it plus the worker's rank, and the pivot-draw stream is
// derived from it alone so every worker draws the same pivots.
func New(pe *fabric.PE, k int64, seed uint64, numPivots int, logger *log.Logger) *Engine {
	utils.Assert(k > 0, "reservoir: sample size k must be positive")
	return &Engine{
		pe:        pe,
		tree:      otree.NewDefault(),
		k:         k,
		threshold: 0,
		workerRNG: rng.PerWorker(seed, pe.Rank()),
		sharedRNG: rng.Shared(seed),
		numPivots: numPivots,
		logger:    logger.With("pe", pe.Rank()),
	}
}

// Insert runs one batch of the algorithm: admit locally, find the global
// rank-k splitter, trim to it, and agree on the new admission threshold.
func (e *Engine) Insert(batch []Item) (BatchStats, error) {
	for _, item := range batch {
		utils.Assert(item.Weight > 0, "reservoir: insert requires strictly positive weight")
	}

	totalStart := time.Now()

	insertStart := time.Now()
	e.admitLocally(batch)
	insertTime := time.Since(insertStart)
	e.logger.Debug("batch admitted locally", "batch", e.batchID, "tree_size", e.tree.Size())

	selectStart := time.Now()
	bracket := selection.Bracket{StartRank: 0, EndRank: e.tree.Size()}
	target := e.k - 1
	res, err := selection.Multi(e.pe, e.tree, bracket, target, target, e.sharedRNG, e.numPivots)
	if err != nil {
		return BatchStats{}, errors.NewEngineError("selection failed during batch", err)
	}
	selectTime := time.Since(selectStart)

	splitStart := time.Now()
	kept, _ := e.tree.SplitAtRank(res.LocalRank)
	e.tree = kept
	splitTime := time.Since(splitStart)

	thresholdStart := time.Now()
	localMax := 0.0
	if e.tree.Size() > 0 {
		localMax = e.tree.FindRank(e.tree.Size() - 1).Key()
	}
	e.threshold = e.pe.AllReduceFloat64(fabric.OpMax, localMax)
	thresholdTime := time.Since(thresholdStart)

	stats := BatchStats{
		BatchID:       e.batchID,
		InputSize:     len(batch),
		TreeSize:      e.tree.Size(),
		Threshold:     e.threshold,
		InsertTime:    insertTime,
		SelectTime:    selectTime,
		SplitTime:     splitTime,
		ThresholdTime: thresholdTime,
		TotalTime:     time.Since(totalStart),
		Selection:     res.Stats,
	}
	e.logger.Info("batch complete",
		"batch", e.batchID,
		"threshold", e.threshold,
		"tree_size", e.tree.Size(),
		"rounds", res.Stats.Rounds,
		"total", stats.TotalTime,
	)
	e.batchID++
	return stats, nil
}

// Sample invokes callback on every (key, id) currently held, in key
// order. It never mutates the tree.
func (e *Engine) Sample(callback func(key float64, id int32)) {
	for it := e.tree.Begin(); it.Valid(); it = it.Next() {
		callback(it.Key(), it.Payload())
	}
}

// Size returns the number of items currently held locally.
func (e *Engine) Size() int64 { return e.tree.Size() }

// Threshold returns the current admission threshold τ (0 before the
// first global selection has run).
func (e *Engine) Threshold() float64 { return e.threshold }
