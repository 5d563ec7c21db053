// Package sqlite is the local-file export store, built on database/sql and modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_results (
	batch_id       TEXT NOT NULL,
	rgi_id         TEXT NOT NULL,
	suffix         TEXT NOT NULL,
	step           INTEGER NOT NULL,
	time           REAL,
	length_m       REAL,
	volume_m3      REAL,
	delta_water_m3 REAL,
	month          INTEGER,
	PRIMARY KEY (batch_id, rgi_id, suffix, step)
);
CREATE TABLE IF NOT EXISTS climate_statistics (
	batch_id          TEXT NOT NULL,
	rgi_id            TEXT NOT NULL,
	month             INTEGER NOT NULL,
	start_year        INTEGER,
	end_year          INTEGER,
	ref_hgt           REAL,
	flowline_min_elev REAL,
	temp_celcius      REAL,
	prcp_mm_mth       REAL,
	PRIMARY KEY (batch_id, rgi_id, month)
);
`

// Storage writes tables to a SQLite file
type Storage struct {
	db   *sql.DB
	path string
}

// New opens the SQLite file at path, creating the tables if needed
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite export database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create export schema in %s: %w", path, err)
	}

	return &Storage{db: db, path: path}, nil
}

// Name implements storage.Store
func (s *Storage) Name() string {
	return "sqlite"
}

// SaveRunResults writes every row of a run-results table in one transaction
func (s *Storage) SaveRunResults(ctx context.Context, batchID uuid.UUID, r *glacier.RunResults) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO run_results
		 (batch_id, rgi_id, suffix, step, time, length_m, volume_m3, delta_water_m3, month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range r.Rows {
		_, err := stmt.ExecContext(ctx, batchID.String(), r.RGIID, r.Suffix, i,
			row.Time, row.LengthM, row.VolumeM3, row.DeltaWaterM3, row.Month)
		if err != nil {
			return fmt.Errorf("failed to insert run result %d for %s: %w", i, r.RGIID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run results: %w", err)
	}
	metrics.ExportedRows.WithLabelValues(s.Name(), "run_results").Add(float64(len(r.Rows)))
	return nil
}

// SaveClimateStatistics writes the twelve monthly rows in one transaction
func (s *Storage) SaveClimateStatistics(ctx context.Context, batchID uuid.UUID, c *glacier.ClimateStatistics) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO climate_statistics
		 (batch_id, rgi_id, month, start_year, end_year, ref_hgt, flowline_min_elev, temp_celcius, prcp_mm_mth)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range c.Rows {
		_, err := stmt.ExecContext(ctx, batchID.String(), c.RGIID, row.Month, c.StartYear, c.EndYear,
			c.RefHgt, c.FlowlineMinElev, row.TempCelsius, row.PrcpMmMonth)
		if err != nil {
			return fmt.Errorf("failed to insert climate statistic for %s month %d: %w", c.RGIID, row.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit climate statistics: %w", err)
	}
	metrics.ExportedRows.WithLabelValues(s.Name(), "climate_statistics").Add(float64(len(c.Rows)))
	return nil
}

// LoadClimateStatistics returns the climate rows stored for a glacier in a batch, January first
func (s *Storage) LoadClimateStatistics(ctx context.Context, batchID uuid.UUID, rgiID string) ([]glacier.ClimateStatistic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, temp_celcius, prcp_mm_mth FROM climate_statistics
		 WHERE batch_id = ? AND rgi_id = ? ORDER BY month`,
		batchID.String(), rgiID)
	if err != nil {
		return nil, fmt.Errorf("failed to query climate statistics: %w", err)
	}
	defer rows.Close()

	var out []glacier.ClimateStatistic
	for rows.Next() {
		var cs glacier.ClimateStatistic
		if err := rows.Scan(&cs.Month, &cs.TempCelsius, &cs.PrcpMmMonth); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// CountRunResults returns how many run-result rows a batch holds for one run
func (s *Storage) CountRunResults(ctx context.Context, batchID uuid.UUID, rgiID, suffix string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_results WHERE batch_id = ? AND rgi_id = ? AND suffix = ?`,
		batchID.String(), rgiID, suffix).Scan(&n)
	return n, err
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}
