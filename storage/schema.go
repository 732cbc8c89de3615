package storage

import (
	"context"
	"fmt"
)

// schemaStatements is the idempotent DDL for the five relations. The
// v_trajets trip-inference view is installed separately by the operator and
// deliberately not created here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS snapshot (
		snapshot_id BIGSERIAL PRIMARY KEY,
		timestamp_capture TIMESTAMP NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS station (
		station_code TEXT PRIMARY KEY,
		name TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		stationtype TEXT,
		type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS velo (
		velo_name TEXT PRIMARY KEY,
		bikeelectric BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS etat_station (
		snapshot_id BIGINT NOT NULL REFERENCES snapshot (snapshot_id),
		station_code TEXT NOT NULL REFERENCES station (station_code),
		state TEXT,
		nbbike INTEGER,
		nbebike INTEGER,
		nbfreedock INTEGER,
		PRIMARY KEY (snapshot_id, station_code)
	)`,
	`CREATE TABLE IF NOT EXISTS localisation_velo (
		loc_id BIGSERIAL PRIMARY KEY,
		snapshot_id BIGINT NOT NULL REFERENCES snapshot (snapshot_id),
		velo_name TEXT NOT NULL REFERENCES velo (velo_name),
		station_code TEXT NOT NULL REFERENCES station (station_code),
		bikestatus TEXT,
		dockposition INTEGER,
		UNIQUE (snapshot_id, velo_name)
	)`,
}

// EnsureSchema applies the DDL so a fresh database is usable without an
// out-of-band migration step.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
