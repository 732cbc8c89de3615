package etl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Karim-DataScience/JeVelibererLaData/config"
	"github.com/Karim-DataScience/JeVelibererLaData/snapshot"
	"github.com/Karim-DataScience/JeVelibererLaData/storage"
)

// SnapshotWriter is the slice of the store the driver writes through.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, ts time.Time, b *storage.Batches) error
}

// Driver is the top-level import control loop: discover candidate files,
// skip the done ones, process the rest strictly one at a time, and persist
// progress after every file regardless of outcome.
type Driver struct {
	cfg      config.ETLConfig
	store    SnapshotWriter
	progress *Progress
	log      *logrus.Logger
	stats    *Stats
}

func NewDriver(cfg config.ETLConfig, store SnapshotWriter, progress *Progress, log *logrus.Logger) *Driver {
	return &Driver{
		cfg:      cfg,
		store:    store,
		progress: progress,
		log:      log,
		stats:    &Stats{},
	}
}

// Stats exposes the cumulative counters for the operator.
func (d *Driver) Stats() StatsSnapshot { return d.stats.Snapshot() }

// Run imports every remaining file in the data folder. It returns the final
// counters; the error is non-nil only for failures that compromise the run
// itself (listing the folder, persisting progress), never for per-file ones.
func (d *Driver) Run(ctx context.Context) (StatsSnapshot, error) {
	files, err := listSnapshotFiles(d.cfg.DataFolder)
	if err != nil {
		return d.stats.Snapshot(), err
	}

	var remaining []string
	for _, name := range files {
		if d.progress.IsDone(name) {
			d.stats.skipped.Add(1)
			continue
		}
		remaining = append(remaining, name)
	}

	d.log.WithFields(logrus.Fields{
		"total":     len(files),
		"done":      len(files) - len(remaining),
		"remaining": len(remaining),
	}).Info("starting import")

	for i, name := range remaining {
		if err := ctx.Err(); err != nil {
			return d.stats.Snapshot(), err
		}

		d.processFile(ctx, name)

		d.progress.MarkDone(name)
		if err := d.progress.Save(); err != nil {
			// losing the progress record compromises resumability, stop here
			return d.stats.Snapshot(), fmt.Errorf("persist progress after %s: %w", name, err)
		}

		if d.cfg.ReportEvery > 0 && (i+1)%d.cfg.ReportEvery == 0 {
			snap := d.stats.Snapshot()
			d.log.WithFields(logrus.Fields{
				"handled":   i + 1,
				"remaining": len(remaining) - i - 1,
				"errors":    snap.Errors(),
			}).Info("import progress")
		}
	}

	final := d.stats.Snapshot()
	d.log.WithField("stats", final.String()).Info("import finished")
	return final, nil
}

// processFile walks one file through its terminal state. Every outcome,
// success or error, leaves the file eligible for MarkDone in Run: a poisoned
// file is counted and skipped forever rather than retried.
func (d *Driver) processFile(ctx context.Context, name string) {
	ts, ok := snapshot.ParseTimestampFromFilename(name)
	if !ok {
		d.stats.genericError.Add(1)
		d.log.WithField("file", name).Error("cannot parse capture timestamp from filename")
		return
	}

	observations, err := snapshot.DecodeFile(filepath.Join(d.cfg.DataFolder, name))
	if err != nil {
		var dec *snapshot.DecodeError
		if errors.As(err, &dec) {
			d.stats.invalidFormat.Add(1)
		} else {
			d.stats.genericError.Add(1)
		}
		d.log.WithField("file", name).WithError(err).Error("cannot decode snapshot file")
		return
	}

	batches := Extract(observations, 0)

	switch err := d.store.WriteSnapshot(ctx, ts, batches); {
	case err == nil:
		d.stats.processed.Add(1)
	case isSnapshotWriteError(err):
		d.stats.snapshotError.Add(1)
		d.log.WithField("file", name).WithError(err).Error("snapshot row failure")
	default:
		d.stats.genericError.Add(1)
		d.log.WithField("file", name).WithError(err).Error("batch write failure")
	}
}

func isSnapshotWriteError(err error) bool {
	var serr *storage.SnapshotWriteError
	return errors.As(err, &serr)
}

// listSnapshotFiles returns candidate filenames in stable discovery order.
func listSnapshotFiles(dataFolder string) ([]string, error) {
	entries, err := os.ReadDir(dataFolder)
	if err != nil {
		return nil, fmt.Errorf("list data folder: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !snapshot.IsSnapshotFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}
