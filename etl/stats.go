package etl

import (
	"fmt"
	"sync/atomic"
)

// Stats accumulates the pipeline's cumulative counters. Counters use atomics
// so an operator-facing reporter may read them while the driver runs.
type Stats struct {
	invalidFormat atomic.Int64
	snapshotError atomic.Int64
	genericError  atomic.Int64
	processed     atomic.Int64
	skipped       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	InvalidFormat int64 `json:"invalid_format"`
	SnapshotError int64 `json:"snapshot_error"`
	GenericError  int64 `json:"generic_error"`
	Processed     int64 `json:"processed"`
	Skipped       int64 `json:"skipped"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		InvalidFormat: s.invalidFormat.Load(),
		SnapshotError: s.snapshotError.Load(),
		GenericError:  s.genericError.Load(),
		Processed:     s.processed.Load(),
		Skipped:       s.skipped.Load(),
	}
}

// Errors returns the total across the three error counters.
func (s StatsSnapshot) Errors() int64 {
	return s.InvalidFormat + s.SnapshotError + s.GenericError
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("processed=%d skipped=%d invalid_format=%d snapshot_error=%d generic_error=%d",
		s.Processed, s.Skipped, s.InvalidFormat, s.SnapshotError, s.GenericError)
}
