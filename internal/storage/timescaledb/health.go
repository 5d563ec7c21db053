package timescaledb

import (
	"context"
	"fmt"
	"time"
)

// Ping checks that the database answers a trivial query
func (t *Storage) Ping(ctx context.Context) error {
	if t.TimescaleDBConn == nil {
		return fmt.Errorf("TimescaleDB connection is nil")
	}

	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := t.TimescaleDBConn.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	return nil
}
