package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// The no-op DO UPDATE is what makes RETURNING yield the existing id when the
// timestamp was already imported.
const upsertSnapshotSQL = `INSERT INTO snapshot (timestamp_capture)
VALUES ($1)
ON CONFLICT (timestamp_capture) DO UPDATE SET timestamp_capture = EXCLUDED.timestamp_capture
RETURNING snapshot_id`

// insertChunkSize bounds rows per INSERT. The extended protocol caps bind
// parameters at 65535 per statement; a full-network capture carries tens of
// thousands of localisation rows, so batches are paged.
const insertChunkSize = 1000

// WriteSnapshot persists one snapshot file's batches, all-or-nothing:
// snapshot upsert, station and velo insert-if-absent, etat_station and
// localisation_velo insert-ignore-duplicates, commit. A failure on the
// snapshot row returns *SnapshotWriteError and nothing else is attempted;
// any other failure returns *WriteError. Both roll the transaction back.
//
// Fact rows are stamped with the snapshot id obtained inside the transaction,
// overriding whatever id the extractor put on them.
func (s *Store) WriteSnapshot(ctx context.Context, ts time.Time, b *Batches) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Table: "snapshot", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var snapshotID int64
	if err := tx.QueryRowContext(ctx, upsertSnapshotSQL, ts).Scan(&snapshotID); err != nil {
		return &SnapshotWriteError{Timestamp: ts, Err: err}
	}

	err = insertChunked(ctx, tx, "station",
		`INSERT INTO station (station_code, name, latitude, longitude, stationtype, type) VALUES `,
		` ON CONFLICT (station_code) DO NOTHING`,
		b.Stations, 6, func(args []any, r StationRow) []any {
			return append(args, r.Code, r.Name, r.Latitude, r.Longitude, r.StationType, r.Type)
		})
	if err != nil {
		return err
	}

	err = insertChunked(ctx, tx, "velo",
		`INSERT INTO velo (velo_name, bikeelectric) VALUES `,
		` ON CONFLICT (velo_name) DO NOTHING`,
		b.Velos, 2, func(args []any, r VeloRow) []any {
			return append(args, r.Name, r.Electric)
		})
	if err != nil {
		return err
	}

	err = insertChunked(ctx, tx, "etat_station",
		`INSERT INTO etat_station (snapshot_id, station_code, state, nbbike, nbebike, nbfreedock) VALUES `,
		` ON CONFLICT DO NOTHING`,
		b.Etats, 6, func(args []any, r EtatStationRow) []any {
			return append(args, snapshotID, r.StationCode, r.State, r.NbBike, r.NbEbike, r.NbFreeDock)
		})
	if err != nil {
		return err
	}

	err = insertChunked(ctx, tx, "localisation_velo",
		`INSERT INTO localisation_velo (snapshot_id, velo_name, station_code, bikestatus, dockposition) VALUES `,
		` ON CONFLICT DO NOTHING`,
		b.Localisations, 5, func(args []any, r LocalisationVeloRow) []any {
			return append(args, snapshotID, r.VeloName, r.StationCode, r.BikeStatus, r.DockPosition)
		})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &WriteError{Table: "commit", Err: err}
	}
	committed = true
	return nil
}

// insertChunked writes rows through tx in pages of insertChunkSize, so no
// single statement exceeds the protocol's bind-parameter cap.
func insertChunked[T any](ctx context.Context, tx *sql.Tx, table, prefix, suffix string, rows []T, cols int, bind func([]any, T) []any) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		chunk := rows[start:min(start+insertChunkSize, len(rows))]
		args := make([]any, 0, len(chunk)*cols)
		for _, r := range chunk {
			args = bind(args, r)
		}
		q := prefix + valuesPlaceholders(len(chunk), cols) + suffix
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return &WriteError{Table: table, Err: err}
		}
	}
	return nil
}

// valuesPlaceholders builds "($1,$2),($3,$4)" style multi-row placeholders.
func valuesPlaceholders(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
