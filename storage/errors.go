package storage

import (
	"fmt"
	"time"
)

// SnapshotWriteError reports a failure creating or fetching the snapshot row.
// Nothing else is attempted for the file when this happens.
type SnapshotWriteError struct {
	Timestamp time.Time
	Err       error
}

func (e *SnapshotWriteError) Error() string {
	return fmt.Sprintf("snapshot row for %s: %v", e.Timestamp.Format(time.RFC3339), e.Err)
}

func (e *SnapshotWriteError) Unwrap() error { return e.Err }

// WriteError reports a failure during batch insertion. The file's whole
// transaction was rolled back.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s batch: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
