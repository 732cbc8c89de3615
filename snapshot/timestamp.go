package snapshot

import (
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

// ParseTimestampFromFilename extracts the capture timestamp embedded in a
// snapshot filename of the form prefix_YYYYMMDD_HHMMSS.json[.gz]. The second
// return value is false when the name does not match; callers must treat such
// files as unusable rather than fail the run.
func ParseTimestampFromFilename(name string) (time.Time, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	datePart := parts[1]
	timePart := parts[2]
	if i := strings.IndexByte(timePart, '.'); i >= 0 {
		timePart = timePart[:i]
	}
	ts, err := time.Parse(timestampLayout, datePart+"_"+timePart)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// IsSnapshotFile reports whether name carries a recognized snapshot extension.
func IsSnapshotFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".gz")
}
