// Package storage persists snapshot facts into the PostgreSQL schema.
//
// The write path is one transaction per snapshot file: the snapshot row is
// upserted first (returning its id), then the station and velo dimensions are
// inserted if absent, then the etat_station and localisation_velo facts are
// inserted ignoring duplicates. Any failure rolls the whole file back.
package storage
