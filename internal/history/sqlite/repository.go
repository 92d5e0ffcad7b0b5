// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/dht"
	"github.com/relabs-tech/climate_node/internal/history"
)

// Repository implements history.Repository with SQLite.
//
// Times are stored as Unix milliseconds so range queries compare integers.
type Repository struct {
	db *sql.DB
}

var _ history.Repository = (*Repository)(nil)

// NewRepository opens (or creates) the database at dbPath.
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS climate_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		temp_c REAL NOT NULL,
		humidity REAL NOT NULL,
		status TEXT NOT NULL,
		captured_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_captured_at ON climate_samples(captured_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Save stores a sample. Derived values (other scales, dew points) are
// recomputed on load.
func (r *Repository) Save(ctx context.Context, s climate.Sample) error {
	query := `INSERT INTO climate_samples (source, temp_c, humidity, status, captured_at) VALUES (?, ?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, s.Source, s.TempC, s.Humidity, s.Status, s.CapturedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

func (r *Repository) Latest(ctx context.Context) (climate.Sample, error) {
	query := `
		SELECT source, temp_c, humidity, status, captured_at
		FROM climate_samples
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	s, err := scanSample(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return climate.Sample{}, history.ErrReadingNotFound
	}
	if err != nil {
		return climate.Sample{}, fmt.Errorf("failed to query latest sample: %w", err)
	}
	return s, nil
}

func (r *Repository) Range(ctx context.Context, start, end time.Time) ([]climate.Sample, error) {
	query := `
		SELECT source, temp_c, humidity, status, captured_at
		FROM climate_samples
		WHERE captured_at >= ? AND captured_at < ?
		ORDER BY captured_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []climate.Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}
	return samples, nil
}

func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM climate_samples WHERE captured_at < ?`

	result, err := r.db.ExecContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old samples: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted samples: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (climate.Sample, error) {
	var (
		source, status string
		tempC, rh      float64
		capturedAt     int64
	)
	if err := row.Scan(&source, &tempC, &rh, &status, &capturedAt); err != nil {
		return climate.Sample{}, err
	}
	s := climate.FromReading(source, dht.Reading{
		TemperatureC: tempC,
		Humidity:     rh,
		CapturedAt:   time.UnixMilli(capturedAt).UTC(),
	})
	s.Status = status
	return s, nil
}
