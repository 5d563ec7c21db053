// Package timescaledb is the PostgreSQL/TimescaleDB export store, built on GORM.
package timescaledb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chrissnell/glacierpost/internal/database"
	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/metrics"
)

const batchSize = 500

// Storage holds the GORM handle of a TimescaleDB export store
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// New connects to TimescaleDB, checks the connection and migrates the export tables
func New(ctx context.Context, connectionString string) (*Storage, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	t := &Storage{TimescaleDBConn: db}

	if err := t.Ping(ctx); err != nil {
		t.Close()
		return nil, err
	}

	if err := database.Migrate(db.WithContext(ctx)); err != nil {
		t.Close()
		return nil, fmt.Errorf("failed to migrate export tables: %w", err)
	}

	return t, nil
}

// Name implements storage.Store
func (t *Storage) Name() string {
	return "timescaledb"
}

// SaveRunResults implements storage.Store
func (t *Storage) SaveRunResults(ctx context.Context, batchID uuid.UUID, r *glacier.RunResults) error {
	records := database.RunResultRecords(batchID, r)
	if len(records) == 0 {
		return nil
	}

	err := t.TimescaleDBConn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("could not store run results for %s: %w", r.RGIID, err)
	}
	metrics.ExportedRows.WithLabelValues(t.Name(), "run_results").Add(float64(len(records)))
	return nil
}

// SaveClimateStatistics implements storage.Store
func (t *Storage) SaveClimateStatistics(ctx context.Context, batchID uuid.UUID, c *glacier.ClimateStatistics) error {
	records := database.ClimateStatisticRecords(batchID, c)
	if len(records) == 0 {
		return nil
	}

	if err := t.TimescaleDBConn.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("could not store climate statistics for %s: %w", c.RGIID, err)
	}
	metrics.ExportedRows.WithLabelValues(t.Name(), "climate_statistics").Add(float64(len(records)))
	return nil
}

// Close closes the underlying connection pool
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
