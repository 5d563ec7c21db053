package glacier

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/glacierpost/internal/dataset"
	"github.com/chrissnell/glacierpost/internal/gdir"
	"github.com/chrissnell/glacierpost/internal/log"
	"github.com/chrissnell/glacierpost/internal/metrics"
	"github.com/chrissnell/glacierpost/pkg/units"
)

// ReadRunResults reads the model diagnostics of one simulation and derives the
// monthly run-results table. suffix selects the run ("" for the unsuffixed file).
func ReadRunResults(dir *gdir.Directory, suffix string) (res *RunResults, err error) {
	start := time.Now()
	defer func() {
		metrics.ReadDuration.WithLabelValues("run_results").Observe(time.Since(start).Seconds())
		metrics.ReadsTotal.WithLabelValues("run_results", metrics.Outcome(err)).Inc()
	}()

	path, err := dir.Require(gdir.ModelDiagnostics, suffix)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}

	res, err = RunResultsFromDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("glacier %s run %q: %w", dir.RGIID, suffix, err)
	}
	res.RGIID = dir.RGIID
	res.Suffix = suffix

	log.Debugw("read run results", "rgi_id", dir.RGIID, "suffix", suffix, "rows", len(res.Rows))
	return res, nil
}

// RunResultsFromDataset derives the run-results table from a loaded diagnostics dataset.
// The time column falls back to the step index when the dataset has no time variable.
func RunResultsFromDataset(ds *dataset.Dataset) (*RunResults, error) {
	length, err := ds.Float64s(VarLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	volume, err := ds.Float64s(VarVolume)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	months, err := ds.Ints(VarCalendarMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var times []float64
	if ds.Has(VarTime) {
		if times, err = ds.Float64s(VarTime); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
	}

	return BuildRunResults(times, length, volume, months)
}

// BuildRunResults assembles the run-results table from raw diagnostics columns.
// times may be nil, in which case rows are indexed by step number.
func BuildRunResults(times, length, volume []float64, months []int) (*RunResults, error) {
	n := len(length)
	if len(volume) != n || len(months) != n || (times != nil && len(times) != n) {
		return nil, fmt.Errorf("%w: column lengths differ (length=%d volume=%d month=%d time=%d)",
			ErrSchema, n, len(volume), len(months), len(times))
	}

	smoothed := SmoothTerminusLength(length)

	deltaWater := VolumeDelta(volume)
	floats.Scale(units.FreshwaterRatio(), deltaWater)

	rows := make([]RunResult, n)
	for i := range rows {
		t := float64(i)
		if times != nil {
			t = times[i]
		}
		rows[i] = RunResult{
			Time:         t,
			LengthM:      smoothed[i],
			VolumeM3:     volume[i],
			DeltaWaterM3: deltaWater[i],
			Month:        months[i],
		}
	}

	return &RunResults{Rows: rows}, nil
}
