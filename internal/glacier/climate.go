package glacier

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/glacierpost/internal/dataset"
	"github.com/chrissnell/glacierpost/internal/gdir"
	"github.com/chrissnell/glacierpost/internal/log"
	"github.com/chrissnell/glacierpost/internal/metrics"
)

const (
	// DefaultStartYear and DefaultEndYear bound the reference climate period (inclusive)
	DefaultStartYear = 1985
	DefaultEndYear   = 2015

	// DefaultLapseRate is the temperature lapse rate in °C per meter
	DefaultLapseRate = 0.0065
)

// ClimateOptions control ReadClimateStatistics
type ClimateOptions struct {
	StartYear int
	EndYear   int
	LapseRate float64

	// AllowPartialWindow accepts a climate record that only intersects the
	// reference period instead of failing with ErrCoverage.
	AllowPartialWindow bool

	// Input is the climate file base name, climate_monthly unless set
	Input  string
	Suffix string

	Statistics StatisticsProvider
}

// ClimateOption modifies ClimateOptions
type ClimateOption func(*ClimateOptions)

// WithWindow overrides the reference period
func WithWindow(startYear, endYear int) ClimateOption {
	return func(o *ClimateOptions) {
		o.StartYear = startYear
		o.EndYear = endYear
	}
}

// WithLapseRate overrides the temperature lapse rate (°C/m)
func WithLapseRate(rate float64) ClimateOption {
	return func(o *ClimateOptions) {
		o.LapseRate = rate
	}
}

// WithPartialWindow accepts climate records that do not span the whole reference period
func WithPartialWindow() ClimateOption {
	return func(o *ClimateOptions) {
		o.AllowPartialWindow = true
	}
}

// WithClimateInput reads a different climate file, e.g. climate_historical
func WithClimateInput(name, suffix string) ClimateOption {
	return func(o *ClimateOptions) {
		o.Input = name
		o.Suffix = suffix
	}
}

// WithStatisticsProvider sets where the flowline minimum elevation comes from
func WithStatisticsProvider(p StatisticsProvider) ClimateOption {
	return func(o *ClimateOptions) {
		o.Statistics = p
	}
}

// DefaultClimateOptions returns the 1985-2015 window, 0.0065 °C/m, strict coverage,
// climate_monthly input and statistics from diagnostics.json
func DefaultClimateOptions() ClimateOptions {
	return ClimateOptions{
		StartYear:  DefaultStartYear,
		EndYear:    DefaultEndYear,
		LapseRate:  DefaultLapseRate,
		Input:      gdir.ClimateMonthly,
		Statistics: DiagnosticsFileProvider{},
	}
}

// ReadClimateStatistics reads a glacier's monthly climate file and returns the mean
// annual cycle over the reference period, with temperature moved from the climate
// data's reference elevation to the glacier terminus.
func ReadClimateStatistics(dir *gdir.Directory, opts ...ClimateOption) (cs *ClimateStatistics, err error) {
	start := time.Now()
	defer func() {
		metrics.ReadDuration.WithLabelValues("climate_statistics").Observe(time.Since(start).Seconds())
		metrics.ReadsTotal.WithLabelValues("climate_statistics", metrics.Outcome(err)).Inc()
	}()

	o := DefaultClimateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Statistics == nil {
		o.Statistics = DiagnosticsFileProvider{}
	}

	path, err := dir.Require(o.Input, o.Suffix)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}

	cs, err = ClimatologyFromDataset(ds, o)
	if err != nil {
		return nil, fmt.Errorf("glacier %s: %w", dir.RGIID, err)
	}

	stats, err := o.Statistics.GlacierStatistics(dir)
	if err != nil {
		return nil, fmt.Errorf("glacier %s: %w", dir.RGIID, err)
	}

	cs.RGIID = dir.RGIID
	cs.FlowlineMinElev = stats.FlowlineMinElev
	ApplyLapseRate(cs.Rows, cs.RefHgt, stats.FlowlineMinElev, o.LapseRate)

	log.Debugw("read climate statistics", "rgi_id", dir.RGIID, "ref_hgt", cs.RefHgt,
		"flowline_min_elev", stats.FlowlineMinElev)
	return cs, nil
}

// ClimatologyFromDataset computes the uncorrected monthly climatology of a loaded climate dataset
func ClimatologyFromDataset(ds *dataset.Dataset, o ClimateOptions) (*ClimateStatistics, error) {
	times, err := ds.Times(VarTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	temp, err := ds.Float64s(VarTemp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	prcp, err := ds.Float64s(VarPrcp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	refHgt, err := ds.AttrFloat(AttrRefHgt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	rows, err := MonthlyClimatology(times, temp, prcp, o.StartYear, o.EndYear, o.AllowPartialWindow)
	if err != nil {
		return nil, err
	}

	return &ClimateStatistics{
		StartYear: o.StartYear,
		EndYear:   o.EndYear,
		RefHgt:    refHgt,
		Rows:      rows,
	}, nil
}

// MonthlyClimatology restricts a monthly record to [startYear-01-01, endYear-12-31]
// and averages temperature and precipitation per calendar month. It always returns
// twelve rows, January first. Unless partial is set, the record must span the whole
// period; a calendar month with no data in the period is an error either way.
func MonthlyClimatology(times []time.Time, temp, prcp []float64, startYear, endYear int, partial bool) ([]ClimateStatistic, error) {
	if len(temp) != len(times) || len(prcp) != len(times) {
		return nil, fmt.Errorf("%w: column lengths differ (time=%d temp=%d prcp=%d)",
			ErrSchema, len(times), len(temp), len(prcp))
	}
	if endYear < startYear {
		return nil, fmt.Errorf("invalid reference period %d-%d", startYear, endYear)
	}

	windowStart := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(endYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	if !partial {
		if err := checkCoverage(times, windowStart, windowEnd); err != nil {
			return nil, err
		}
	}

	var tempByMonth, prcpByMonth [12][]float64
	for i, t := range times {
		if t.Before(windowStart) || !t.Before(windowEnd) {
			continue
		}
		m := int(t.Month()) - 1
		tempByMonth[m] = append(tempByMonth[m], temp[i])
		prcpByMonth[m] = append(prcpByMonth[m], prcp[i])
	}

	rows := make([]ClimateStatistic, 12)
	for m := 0; m < 12; m++ {
		if len(tempByMonth[m]) == 0 {
			return nil, fmt.Errorf("%w: no %s data in %d-%d", ErrCoverage, time.Month(m+1), startYear, endYear)
		}
		rows[m] = ClimateStatistic{
			Month:       m + 1,
			TempCelsius: stat.Mean(tempByMonth[m], nil),
			PrcpMmMonth: stat.Mean(prcpByMonth[m], nil),
		}
	}
	return rows, nil
}

// checkCoverage requires a record in the first and in the last month of the window
func checkCoverage(times []time.Time, windowStart, windowEnd time.Time) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: empty record", ErrCoverage)
	}

	first, last := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	if !first.Before(windowStart.AddDate(0, 1, 0)) || last.Before(windowEnd.AddDate(0, -1, 0)) {
		return fmt.Errorf("%w: record spans %s to %s, period is %s to %s", ErrCoverage,
			first.Format("2006-01"), last.Format("2006-01"),
			windowStart.Format("2006-01"), windowEnd.AddDate(0, 0, -1).Format("2006-01"))
	}
	return nil
}

// ApplyLapseRate shifts monthly temperatures from the climate reference elevation to
// the glacier's lowest flowline elevation: temp += (refHgt - minElev) * rate
func ApplyLapseRate(rows []ClimateStatistic, refHgt, minElev, rate float64) {
	correction := (refHgt - minElev) * rate
	for i := range rows {
		rows[i].TempCelsius += correction
	}
}
