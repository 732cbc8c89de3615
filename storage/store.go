package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/Karim-DataScience/JeVelibererLaData/config"
)

const driverName = "pgx"

// Store is the PostgreSQL-backed relational store.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing connection. Used by tests and by callers
// that manage the pool themselves.
func NewStoreFromDB(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool for the read API.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// SnapshotTimestamps returns the capture timestamps of every snapshot already
// committed, keyed in UTC. Used to reconstruct a lost progress file.
func (s *Store) SnapshotTimestamps(ctx context.Context) (map[time.Time]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp_capture FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("list snapshot timestamps: %w", err)
	}
	defer rows.Close()

	existing := make(map[time.Time]struct{})
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan snapshot timestamp: %w", err)
		}
		existing[ts.UTC()] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshot timestamps: %w", err)
	}
	return existing, nil
}
