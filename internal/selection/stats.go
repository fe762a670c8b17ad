package selection

// Stats accumulates the per-run counters the original keeps in
// select_stats (_examples/original_source/reservoir/select_helpers.hpp):
// how many rounds a selection took, how it was biased, and how often a
// round made no progress and had to retry. Not needed for correctness —
// only for the progress-guarantee property tests and for the stats line
// the driver prints per batch.
type Stats struct {
	Rounds            int
	PivotsDrawn       int
	Case1Rounds       int
	Case2Rounds       int
	NoProgressRetries int
	FellBackToSingle  bool
	GlobalSizeByRound []int64
}

func (s *Stats) recordRound(globalSize int64, case1 bool, pivots int) {
	if s == nil {
		return
	}
	s.Rounds++
	s.PivotsDrawn += pivots
	s.GlobalSizeByRound = append(s.GlobalSizeByRound, globalSize)
	if case1 {
		s.Case1Rounds++
	} else {
		s.Case2Rounds++
	}
}

func (s *Stats) recordRetry() {
	if s == nil {
		return
	}
	s.NoProgressRetries++
}
