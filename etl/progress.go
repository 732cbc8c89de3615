package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Karim-DataScience/JeVelibererLaData/snapshot"
)

// TimestampLister is the slice of the store the progress rebuild needs.
type TimestampLister interface {
	SnapshotTimestamps(ctx context.Context) (map[time.Time]struct{}, error)
}

// Progress is the durable set of snapshot filenames already fully handled,
// successfully or as a permanent per-file error. Owned exclusively by the
// pipeline driver during a run.
type Progress struct {
	path string
	done map[string]struct{}
}

type progressFile struct {
	Done []string `json:"done"`
}

// LoadProgress reads the persisted done-set. A missing, empty or corrupt
// progress file triggers a rebuild from the database, so an operator can
// recover a lost file without re-importing committed data.
func LoadProgress(ctx context.Context, path, dataFolder string, store TimestampLister, log *logrus.Logger) (*Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read progress file: %w", err)
		}
		log.WithField("path", path).Warn("progress file not found, rebuilding from database")
		return RebuildProgress(ctx, path, dataFolder, store, log)
	}

	var pf progressFile
	if len(data) == 0 || json.Unmarshal(data, &pf) != nil {
		log.WithField("path", path).Warn("progress file empty or corrupt, rebuilding from database")
		return RebuildProgress(ctx, path, dataFolder, store, log)
	}

	p := &Progress{path: path, done: make(map[string]struct{}, len(pf.Done))}
	for _, name := range pf.Done {
		p.done[name] = struct{}{}
	}
	return p, nil
}

// RebuildProgress reconstructs the done-set by matching each candidate
// file's parsed timestamp against the snapshots already in the database.
// Files whose name cannot be parsed are left for the driver to handle, never
// silently marked done.
func RebuildProgress(ctx context.Context, path, dataFolder string, store TimestampLister, log *logrus.Logger) (*Progress, error) {
	existing, err := store.SnapshotTimestamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild progress: %w", err)
	}
	log.WithField("snapshots", len(existing)).Info("rebuilding progress from database")

	entries, err := os.ReadDir(dataFolder)
	if err != nil {
		return nil, fmt.Errorf("rebuild progress: %w", err)
	}

	p := &Progress{path: path, done: make(map[string]struct{})}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !snapshot.IsSnapshotFile(name) {
			continue
		}
		ts, ok := snapshot.ParseTimestampFromFilename(name)
		if !ok {
			continue
		}
		if _, found := existing[ts.UTC()]; found {
			p.done[name] = struct{}{}
		}
	}
	log.WithField("done", len(p.done)).Info("progress rebuilt")
	return p, nil
}

// IsDone reports whether the file was already fully handled.
func (p *Progress) IsDone(name string) bool {
	_, ok := p.done[name]
	return ok
}

// MarkDone records the file as handled. Save must be called to persist.
func (p *Progress) MarkDone(name string) {
	p.done[name] = struct{}{}
}

// Len returns the number of files recorded as done.
func (p *Progress) Len() int { return len(p.done) }

// Save writes the done-set to a temporary file and renames it into place, so
// a crash mid-write cannot corrupt the previous valid record.
func (p *Progress) Save() error {
	names := make([]string, 0, len(p.done))
	for name := range p.done {
		names = append(names, name)
	}
	sort.Strings(names)

	data, err := json.MarshalIndent(progressFile{Done: names}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace progress: %w", err)
	}
	return nil
}

// Path returns the location of the persisted record.
func (p *Progress) Path() string { return filepath.Clean(p.path) }
