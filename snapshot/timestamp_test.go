package snapshot

import (
	"testing"
	"time"
)

func TestParseTimestampFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		ok       bool
	}{
		{
			name:     "plain json",
			filename: "velib_20240101_080000.json",
			want:     time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "gzipped",
			filename: "velib_20240101_080500.json.gz",
			want:     time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "trailing underscore token ignored",
			filename: "velib_20231215_233000_v2.json",
			want:     time.Date(2023, 12, 15, 23, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "missing time token",
			filename: "velib_20240101.json",
			ok:       false,
		},
		{
			name:     "no underscores",
			filename: "snapshot.json",
			ok:       false,
		},
		{
			name:     "malformed digits",
			filename: "velib_2024AB01_080000.json",
			ok:       false,
		},
		{
			name:     "impossible date",
			filename: "velib_20241345_080000.json",
			ok:       false,
		},
		{
			name:     "short time token",
			filename: "velib_20240101_0800.json",
			ok:       false,
		},
		{
			name:     "empty name",
			filename: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestampFromFilename(tt.filename)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !got.Equal(tt.want) {
				t.Errorf("timestamp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSnapshotFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"velib_20240101_080000.json", true},
		{"velib_20240101_080000.json.gz", true},
		{"velib_20240101_080000.txt", false},
		{"notes.md", false},
	}
	for _, tt := range tests {
		if got := IsSnapshotFile(tt.filename); got != tt.want {
			t.Errorf("IsSnapshotFile(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
