package gather

import "time"

// BatchStats mirrors the original's res_stats fields for the gather
// baseline: insert (local key generation + local pre-trim), gather
// (transmitting candidates to the root), select (the root's sequential
// selection plus the threshold broadcast), and the batch total.
type BatchStats struct {
	BatchID    int
	InputSize  int
	LocalSize  int
	Threshold  float64
	InsertTime time.Duration
	GatherTime time.Duration
	SelectTime time.Duration
	TotalTime  time.Duration
}
