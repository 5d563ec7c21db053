// Package glacier derives the post-processed tables from a glacier model run:
// the monthly run results (smoothed terminus length, volume and meltwater change)
// and the 1985-2015 monthly climatology at the glacier terminus.
package glacier

import "errors"

// Input variable and attribute names
const (
	VarTime          = "time"
	VarLength        = "length_m"
	VarVolume        = "volume_m3"
	VarCalendarMonth = "calendar_month"
	VarTemp          = "temp"
	VarPrcp          = "prcp"
	AttrRefHgt       = "ref_hgt"
)

var (
	// ErrSchema is returned when a dataset lacks a required field or its fields disagree in length
	ErrSchema = errors.New("dataset schema error")

	// ErrCoverage is returned when the climate record does not span the reference period
	ErrCoverage = errors.New("climate record does not cover the reference period")
)

// RunResult is one monthly row of a simulation's diagnostics
type RunResult struct {
	Time         float64 `json:"time"`
	LengthM      float64 `json:"length_m"`
	VolumeM3     float64 `json:"volume_m3"`
	DeltaWaterM3 float64 `json:"delta_water_m3"`
	Month        int     `json:"month"`
}

// RunResults is the table produced by ReadRunResults
type RunResults struct {
	RGIID  string      `json:"rgi_id"`
	Suffix string      `json:"suffix"`
	Rows   []RunResult `json:"rows"`
}

// Lengths returns the smoothed length column
func (r *RunResults) Lengths() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.LengthM
	}
	return out
}

// DeltaWater returns the freshwater-equivalent volume change column
func (r *RunResults) DeltaWater() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.DeltaWaterM3
	}
	return out
}

// ClimateStatistic is the mean climate of one calendar month
type ClimateStatistic struct {
	Month       int     `json:"month"`
	TempCelsius float64 `json:"temp_celcius"`
	PrcpMmMonth float64 `json:"prcp_mm_mth"`
}

// ClimateStatistics is the table produced by ReadClimateStatistics: twelve rows, January first
type ClimateStatistics struct {
	RGIID           string             `json:"rgi_id"`
	StartYear       int                `json:"start_year"`
	EndYear         int                `json:"end_year"`
	RefHgt          float64            `json:"ref_hgt"`
	FlowlineMinElev float64            `json:"flowline_min_elev"`
	Rows            []ClimateStatistic `json:"rows"`
}
