package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/glacierpost/internal/glacier"
)

// RunResultRecord is one exported run-results row
type RunResultRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;column:id"`
	BatchID      uuid.UUID `gorm:"column:batch_id;type:uuid;index"`
	RGIID        string    `gorm:"column:rgi_id;not null;index:idx_run_glacier"`
	Suffix       string    `gorm:"column:suffix;index:idx_run_glacier"`
	Step         int       `gorm:"column:step"`
	Time         float64   `gorm:"column:time"`
	LengthM      float64   `gorm:"column:length_m"`
	VolumeM3     float64   `gorm:"column:volume_m3"`
	DeltaWaterM3 float64   `gorm:"column:delta_water_m3"`
	Month        int       `gorm:"column:month"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for RunResultRecord
func (RunResultRecord) TableName() string {
	return "run_results"
}

// ClimateStatisticRecord is one exported climate-statistics row
type ClimateStatisticRecord struct {
	ID              uint      `gorm:"primaryKey;autoIncrement;column:id"`
	BatchID         uuid.UUID `gorm:"column:batch_id;type:uuid;index"`
	RGIID           string    `gorm:"column:rgi_id;not null;index"`
	StartYear       int       `gorm:"column:start_year"`
	EndYear         int       `gorm:"column:end_year"`
	RefHgt          float64   `gorm:"column:ref_hgt"`
	FlowlineMinElev float64   `gorm:"column:flowline_min_elev"`
	Month           int       `gorm:"column:month"`
	TempCelsius     float64   `gorm:"column:temp_celcius"`
	PrcpMmMonth     float64   `gorm:"column:prcp_mm_mth"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for ClimateStatisticRecord
func (ClimateStatisticRecord) TableName() string {
	return "climate_statistics"
}

// RunResultRecords flattens a run-results table into records
func RunResultRecords(batchID uuid.UUID, r *glacier.RunResults) []RunResultRecord {
	records := make([]RunResultRecord, len(r.Rows))
	for i, row := range r.Rows {
		records[i] = RunResultRecord{
			BatchID:      batchID,
			RGIID:        r.RGIID,
			Suffix:       r.Suffix,
			Step:         i,
			Time:         row.Time,
			LengthM:      row.LengthM,
			VolumeM3:     row.VolumeM3,
			DeltaWaterM3: row.DeltaWaterM3,
			Month:        row.Month,
		}
	}
	return records
}

// ClimateStatisticRecords flattens a climate-statistics table into records
func ClimateStatisticRecords(batchID uuid.UUID, c *glacier.ClimateStatistics) []ClimateStatisticRecord {
	records := make([]ClimateStatisticRecord, len(c.Rows))
	for i, row := range c.Rows {
		records[i] = ClimateStatisticRecord{
			BatchID:         batchID,
			RGIID:           c.RGIID,
			StartYear:       c.StartYear,
			EndYear:         c.EndYear,
			RefHgt:          c.RefHgt,
			FlowlineMinElev: c.FlowlineMinElev,
			Month:           row.Month,
			TempCelsius:     row.TempCelsius,
			PrcpMmMonth:     row.PrcpMmMonth,
		}
	}
	return records
}
