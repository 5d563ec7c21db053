// Package storage defines the export stores that post-processed glacier tables are written to.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/chrissnell/glacierpost/internal/glacier"
)

// Store persists post-processed tables. Every row written in one batch carries the
// same batch id so a run of the CLI can be told apart from earlier runs.
type Store interface {
	Name() string
	SaveRunResults(ctx context.Context, batchID uuid.UUID, r *glacier.RunResults) error
	SaveClimateStatistics(ctx context.Context, batchID uuid.UUID, c *glacier.ClimateStatistics) error
	Close() error
}

// Multi fans writes out to several stores, stopping at the first failure
type Multi []Store

// Name implements Store
func (m Multi) Name() string {
	return "multi"
}

// SaveRunResults implements Store
func (m Multi) SaveRunResults(ctx context.Context, batchID uuid.UUID, r *glacier.RunResults) error {
	for _, s := range m {
		if err := s.SaveRunResults(ctx, batchID, r); err != nil {
			return err
		}
	}
	return nil
}

// SaveClimateStatistics implements Store
func (m Multi) SaveClimateStatistics(ctx context.Context, batchID uuid.UUID, c *glacier.ClimateStatistics) error {
	for _, s := range m {
		if err := s.SaveClimateStatistics(ctx, batchID, c); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every store and returns the first error
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
