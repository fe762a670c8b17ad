// Package gather implements the naive gather-to-root reservoir sampling
// baseline: every worker admits candidate keys locally, pre-trims to at
// most k of them, sends them to one root PE, and the root does an exact
// sequential selection and broadcasts the resulting threshold back out.
//
// Grounded on
// _examples/original_source/reservoir/reservoir_gather.hpp
// (`reservoir_gather`). Exists to give the ams/ams-multi-* variants in
// internal/reservoir something to validate correctness against — this is
// the "obviously correct, does not scale" reference implementation the
// selection protocol's approximate result should agree with.
package gather

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/rng"
	"govetachun/resvoir/pkg/utils"
)

// Item is one (weight, id) pair from the input stream.
type Item struct {
	Weight float64
	ID     int32
}

type keyed struct {
	Key float64
	ID  int32
}

// Root is the PE rank that performs the sequential selection and holds
// the final sample; Sample is only meaningful there.
const Root = 0

// Engine is the gather-baseline counterpart to reservoir.Engine: same
// external shape (Insert per batch, Sample at the end), entirely
// different internals — a flat candidate slice instead of a tree, and a
// single gather+sequential-select instead of a distributed protocol.
type Engine struct {
	pe        *fabric.PE
	k         int64
	threshold float64
	batchID   int
	rng       *rng.Source
	logger    *log.Logger

	items []keyed // this PE's admitted candidates for the batch in flight
	kept  []keyed // final sample, populated only at Root
}

// New creates an Engine for one worker.
func New(pe *fabric.PE, k int64, seed uint64, logger *log.Logger) *Engine {
	utils.Assert(k > 0, "gather: sample size k must be positive")
	return &Engine{
		pe:     pe,
		k:      k,
		rng:    rng.PerWorker(seed, pe.Rank()),
		logger: logger.With("pe", pe.Rank()),
	}
}

// Insert admits batch, pre-trims locally to at most k candidates, gathers
// every PE's candidates to Root, and has Root pick the k smallest and
// broadcast the resulting threshold.
func (e *Engine) Insert(batch []Item) (BatchStats, error) {
	for _, item := range batch {
		utils.Assert(item.Weight > 0, "gather: insert requires strictly positive weight")
	}

	totalStart := time.Now()

	insertStart := time.Now()
	e.items = e.items[:0]
	e.admitLocally(batch)
	if int64(len(e.items)) > e.k {
		sort.Slice(e.items, func(i, j int) bool { return e.items[i].Key < e.items[j].Key })
		e.items = e.items[:e.k]
	}
	insertTime := time.Since(insertStart)

	gatherStart := time.Now()
	gathered := e.pe.GatherAny(Root, e.items)
	gatherTime := time.Since(gatherStart)

	selectStart := time.Now()
	if e.pe.Rank() == Root {
		all := append([]keyed{}, e.kept...)
		for _, part := range gathered {
			all = append(all, part.([]keyed)...)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
		if int64(len(all)) > e.k {
			all = all[:e.k]
		}
		e.kept = all
		if len(e.kept) > 0 {
			e.threshold = e.kept[len(e.kept)-1].Key
		}
	}
	e.threshold = e.pe.BroadcastFloat64(Root, e.threshold)
	selectTime := time.Since(selectStart)

	stats := BatchStats{
		BatchID:    e.batchID,
		InputSize:  len(batch),
		LocalSize:  len(e.items),
		Threshold:  e.threshold,
		InsertTime: insertTime,
		GatherTime: gatherTime,
		SelectTime: selectTime,
		TotalTime:  time.Since(totalStart),
	}
	e.logger.Info("gather batch complete",
		"batch", e.batchID,
		"threshold", e.threshold,
		"local_size", len(e.items),
	)
	e.batchID++
	return stats, nil
}

// Sample invokes callback on every (key, id) kept at Root, in key order.
// On non-Root PEs it calls back nothing.
func (e *Engine) Sample(callback func(key float64, id int32)) {
	for _, it := range e.kept {
		callback(it.Key, it.ID)
	}
}

// Threshold returns the most recently broadcast admission threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// Size returns the number of items currently kept. Only meaningful at
// Root; it is always 0 elsewhere since non-root PEs never retain a
// sample between batches.
func (e *Engine) Size() int64 { return int64(len(e.kept)) }
