// Package snapshot decodes Vélib network snapshot files.
//
// A snapshot file is a JSON array of per-station observations, optionally
// gzip-compressed, whose filename embeds the capture timestamp
// (prefix_YYYYMMDD_HHMMSS.json or .json.gz). The package is I/O only: it
// never touches the database.
package snapshot
