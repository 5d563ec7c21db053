// Package database holds the GORM models and connection helper for the TimescaleDB export store.
package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/glacierpost/internal/log"
)

// CreateConnection opens a GORM connection to PostgreSQL/TimescaleDB, logging through zap
func CreateConnection(connectionString string) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warnf("unable to create a TimescaleDB connection: %v", err)
		return nil, err
	}
	log.Info("TimescaleDB connection successful")

	return db, nil
}

// Migrate creates or updates the export tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RunResultRecord{}, &ClimateStatisticRecord{})
}
