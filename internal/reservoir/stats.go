package reservoir

import (
	"time"

	"govetachun/resvoir/internal/selection"
)

// BatchStats is the per-batch timing breakdown the driver logs and
// statsui renders one line per batch from, mirroring the four timed
// phases the original records through res_stats: insert, select, split,
// threshold, plus the batch total.
type BatchStats struct {
	BatchID       int
	InputSize     int
	TreeSize      int64
	Threshold     float64
	InsertTime    time.Duration
	SelectTime    time.Duration
	SplitTime     time.Duration
	ThresholdTime time.Duration
	TotalTime     time.Duration
	Selection     selection.Stats
}
