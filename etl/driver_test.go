package etl

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Karim-DataScience/JeVelibererLaData/config"
	"github.com/Karim-DataScience/JeVelibererLaData/storage"
)

const stationJSON = `[
  {
    "station": {"code": "16107", "name": "Test", "gps": {"latitude": 48.8, "longitude": 2.3}},
    "state": "ok", "nbBike": 1, "nbEbike": 1, "nbFreeDock": 5,
    "bikes": [{"bikeName": "BIKE1", "bikeElectric": true, "bikeStatus": "free", "dockPosition": 1}]
  }
]`

type writeCall struct {
	ts      time.Time
	batches *storage.Batches
}

type fakeWriter struct {
	calls    []writeCall
	failWith map[string]error // keyed by HHMMSS of the capture timestamp
}

func (f *fakeWriter) WriteSnapshot(_ context.Context, ts time.Time, b *storage.Batches) error {
	f.calls = append(f.calls, writeCall{ts: ts, batches: b})
	if err, ok := f.failWith[ts.Format("150405")]; ok {
		return err
	}
	return nil
}

func writeSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeGzipSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDriver(t *testing.T, dir string, writer SnapshotWriter) *Driver {
	t.Helper()
	progress, err := LoadProgress(context.Background(), filepath.Join(dir, "progress.json"), dir, &fakeLister{}, quietLogger())
	if err != nil {
		t.Fatalf("LoadProgress: %v", err)
	}
	cfg := config.ETLConfig{DataFolder: dir, ProgressFile: filepath.Join(dir, "progress.json")}
	return NewDriver(cfg, writer, progress, quietLogger())
}

func TestDriver_Run(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "velib_20240101_080000.json", stationJSON)
	writeGzipSnapshotFile(t, dir, "velib_20240101_080500.json.gz", stationJSON)
	writeSnapshotFile(t, dir, "velib_20240101_081000.json", `{"not": "a list"}`)
	writeSnapshotFile(t, dir, "badname.json", stationJSON)
	writeSnapshotFile(t, dir, "velib_20240101_081500.json", stationJSON)
	writeSnapshotFile(t, dir, "velib_20240101_082000.json", stationJSON)
	writeSnapshotFile(t, dir, "notes.txt", "ignore me")

	writer := &fakeWriter{failWith: map[string]error{
		"081500": &storage.WriteError{Table: "localisation_velo", Err: errors.New("boom")},
		"082000": &storage.SnapshotWriteError{Err: errors.New("boom")},
	}}
	driver := newTestDriver(t, dir, writer)

	stats, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Processed != 2 {
		t.Errorf("processed = %d, want 2", stats.Processed)
	}
	if stats.InvalidFormat != 1 {
		t.Errorf("invalid_format = %d, want 1", stats.InvalidFormat)
	}
	if stats.SnapshotError != 1 {
		t.Errorf("snapshot_error = %d, want 1", stats.SnapshotError)
	}
	// unparsable filename + failed batch write
	if stats.GenericError != 2 {
		t.Errorf("generic_error = %d, want 2", stats.GenericError)
	}

	// decode failures and unparsable names never reach the writer
	if len(writer.calls) != 4 {
		t.Fatalf("writer called %d times, want 4", len(writer.calls))
	}
	want := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	if !writer.calls[0].ts.Equal(want) {
		t.Errorf("first write timestamp = %v, want %v", writer.calls[0].ts, want)
	}
	if got := writer.calls[0].batches.Stations[0].Code; got != "16107" {
		t.Errorf("station code in batches = %q", got)
	}

	// every terminal state marks the file done, .txt is never discovered
	if driver.progress.Len() != 6 {
		t.Errorf("done-set has %d entries, want 6", driver.progress.Len())
	}
	if driver.progress.IsDone("notes.txt") {
		t.Error("non-snapshot file should not appear in the done-set")
	}
	if !driver.progress.IsDone("badname.json") {
		t.Error("unparsable file must still be marked done")
	}
}

func TestDriver_SecondRunSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "velib_20240101_080000.json", stationJSON)
	writeSnapshotFile(t, dir, "velib_20240101_080500.json", stationJSON)

	first := &fakeWriter{}
	if _, err := newTestDriver(t, dir, first).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.calls) != 2 {
		t.Fatalf("first run wrote %d files, want 2", len(first.calls))
	}

	// a fresh driver reloads the persisted progress and must not re-import
	second := &fakeWriter{}
	stats, err := newTestDriver(t, dir, second).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.calls) != 0 {
		t.Errorf("second run wrote %d files, want 0", len(second.calls))
	}
	if stats.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", stats.Skipped)
	}
}

func TestDriver_FailedFileIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "velib_20240101_080000.json", stationJSON)

	failing := &fakeWriter{failWith: map[string]error{
		"080000": &storage.WriteError{Table: "station", Err: errors.New("boom")},
	}}
	stats, err := newTestDriver(t, dir, failing).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if stats.GenericError != 1 {
		t.Errorf("generic_error = %d, want 1", stats.GenericError)
	}

	retry := &fakeWriter{}
	if _, err := newTestDriver(t, dir, retry).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(retry.calls) != 0 {
		t.Error("a failed file marked done must not be retried on the next run")
	}
}

func TestDriver_ProgressPersistFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "velib_20240101_080000.json", stationJSON)

	progress := &Progress{
		path: filepath.Join(dir, "missing-subdir", "progress.json"),
		done: map[string]struct{}{},
	}
	cfg := config.ETLConfig{DataFolder: dir}
	driver := NewDriver(cfg, &fakeWriter{}, progress, quietLogger())

	if _, err := driver.Run(context.Background()); err == nil {
		t.Error("expected fatal error when progress cannot be persisted")
	}
}

func TestDriver_EmptyFolder(t *testing.T) {
	dir := t.TempDir()
	stats, err := newTestDriver(t, dir, &fakeWriter{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 0 || stats.Errors() != 0 {
		t.Errorf("expected zero activity, got %+v", stats)
	}
}
