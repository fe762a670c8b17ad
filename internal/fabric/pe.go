package fabric

// PE is one rank's handle onto a Comm. It carries no state of its own
// beyond its rank, mirroring how the original ties every collective call
// to a process-wide rank rather than an explicit handle — except here the
// rank is threaded through explicitly instead of read from a global.
type PE struct {
	comm *Comm
	rank int
}

// Rank returns this PE's position in the communicator, in [0, Size()).
func (p *PE) Rank() int { return p.rank }

// Size returns the number of PEs in the communicator.
func (p *PE) Size() int { return p.comm.n }

// Barrier blocks until every PE has called Barrier.
func (p *PE) Barrier() {
	p.comm.rendezvous(p.rank, struct{}{})
}

// BroadcastFloat64 returns root's value to every PE.
func (p *PE) BroadcastFloat64(root int, value float64) float64 {
	results := p.comm.rendezvous(p.rank, value)
	return results[root].(float64)
}

// BroadcastInt64 returns root's value to every PE.
func (p *PE) BroadcastInt64(root int, value int64) int64 {
	results := p.comm.rendezvous(p.rank, value)
	return results[root].(int64)
}

// AllReduceFloat64 combines every PE's value with op and returns the
// result to all of them.
func (p *PE) AllReduceFloat64(op ReduceOp, value float64) float64 {
	results := p.comm.rendezvous(p.rank, value)
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.(float64)
	}
	return combineFloat64(op, values)
}

// AllReduceInt64 combines every PE's value with op and returns the result
// to all of them.
func (p *PE) AllReduceInt64(op ReduceOp, value int64) int64 {
	results := p.comm.rendezvous(p.rank, value)
	values := make([]int64, len(results))
	for i, r := range results {
		values[i] = r.(int64)
	}
	return combineInt64(op, values)
}

// AllReduceFloat64Vec combines every PE's fixed-width vector element-wise
// with op. Every PE must call it with the same vector width.
func (p *PE) AllReduceFloat64Vec(op ReduceOp, values []float64) []float64 {
	results := p.comm.rendezvous(p.rank, values)
	width := len(values)
	out := make([]float64, width)
	column := make([]float64, len(results))
	for i := 0; i < width; i++ {
		for r, v := range results {
			column[r] = v.([]float64)[i]
		}
		out[i] = combineFloat64(op, column)
	}
	return out
}

// ScanInt64 performs an inclusive prefix sum: the value returned to PE r
// is the sum of every PE p<=r's contribution.
func (p *PE) ScanInt64(value int64) int64 {
	results := p.comm.rendezvous(p.rank, value)
	var sum int64
	for i := 0; i <= p.rank; i++ {
		sum += results[i].(int64)
	}
	return sum
}

// GatherAny collects every PE's value, ordered by rank, returning the full
// slice only to root; other PEs get nil. Values can be of any shape
// (scalars, fixed slices, or variable-length slices — this is also this
// package's gatherv), since the caller is expected to know what it put in.
func (p *PE) GatherAny(root int, value any) []any {
	results := p.comm.rendezvous(p.rank, value)
	if p.rank != root {
		return nil
	}
	return results
}

// AllGatherInt64 collects every PE's value, ordered by rank, and returns
// the full vector to every PE — unlike GatherAny, there is no single root.
// The selection protocol uses this to let every PE independently compute
// which rank owns a given global index, without a round of per-PE
// ownership queries.
func (p *PE) AllGatherInt64(value int64) []int64 {
	results := p.comm.rendezvous(p.rank, value)
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.(int64)
	}
	return out
}

// AllReduceInt64Vec combines every PE's fixed-width vector element-wise
// with op. Every PE must call it with the same vector width.
func (p *PE) AllReduceInt64Vec(op ReduceOp, values []int64) []int64 {
	results := p.comm.rendezvous(p.rank, values)
	width := len(values)
	out := make([]int64, width)
	column := make([]int64, len(results))
	for i := 0; i < width; i++ {
		for r, v := range results {
			column[r] = v.([]int64)[i]
		}
		out[i] = combineInt64(op, column)
	}
	return out
}
