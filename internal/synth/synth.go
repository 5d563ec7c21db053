// Package synth writes synthetic glacier directories: a diagnostics file per run,
// a monthly climate file and diagnostics.json. They drive the demo command and
// the package tests.
package synth

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chrissnell/glacierpost/internal/dataset"
	"github.com/chrissnell/glacierpost/internal/gdir"
)

// ClimateTimeUnits is the time encoding used for the synthetic climate file
const ClimateTimeUnits = "days since 1801-01-01 00:00:00"

// Glacier describes the synthetic glacier to write
type Glacier struct {
	RGIID string

	// Run suffixes to write diagnostics for; nil writes a single unsuffixed file
	Suffixes []string

	DiagnosticsStartYear int
	Months               int
	Length               func(step int) float64
	Volume               func(step int) float64

	ClimateStartYear int
	ClimateEndYear   int
	Temp             func(t time.Time) float64
	Prcp             func(t time.Time) float64
	RefHgt           float64

	// FlowlineMinElev is written to diagnostics.json; NaN omits the file
	FlowlineMinElev float64
}

// Default returns a retreating glacier with a seasonal climate, 1979-2019 climate
// and a 2003-2020 historical run
func Default(rgiID string) Glacier {
	return Glacier{
		RGIID:                rgiID,
		Suffixes:             []string{"_historical"},
		DiagnosticsStartYear: 2003,
		Months:               12 * 17,
		Length: func(step int) float64 {
			// steady retreat with a seasonal wobble
			return 7000 - 4*float64(step) + 25*math.Sin(2*math.Pi*float64(step)/12)
		},
		Volume: func(step int) float64 {
			return 6e8 - 1.2e6*float64(step)
		},
		ClimateStartYear: 1979,
		ClimateEndYear:   2019,
		Temp: func(t time.Time) float64 {
			return -2 + 9*math.Sin(2*math.Pi*(float64(t.Month())-4)/12)
		},
		Prcp: func(t time.Time) float64 {
			return 80 + 20*math.Cos(2*math.Pi*float64(t.Month())/12)
		},
		RefHgt:          2252,
		FlowlineMinElev: 2446,
	}
}

// Write creates the glacier directory below root using the per-glacier layout and
// returns its handle
func Write(root string, g Glacier) (*gdir.Directory, error) {
	path, err := gdir.PerGlacierPath(root, g.RGIID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	d, err := gdir.Locate(root, g.RGIID)
	if err != nil {
		return nil, err
	}

	suffixes := g.Suffixes
	if suffixes == nil {
		suffixes = []string{""}
	}
	for _, s := range suffixes {
		if err := WriteDiagnostics(d, s, g); err != nil {
			return nil, err
		}
	}

	if err := WriteClimate(d, g); err != nil {
		return nil, err
	}

	if !math.IsNaN(g.FlowlineMinElev) {
		if err := WriteStatistics(d, map[string]interface{}{
			"rgi_id":               g.RGIID,
			"flowline_min_elev":    g.FlowlineMinElev,
			"flowline_max_elev":    g.FlowlineMinElev + 1300,
			"dem_source":           "SYNTHETIC",
			"flowline_mean_elev":   g.FlowlineMinElev + 650,
			"inversion_volume_km3": 0.6,
		}); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// WriteDiagnostics writes model_diagnostics<suffix>.nc
func WriteDiagnostics(d *gdir.Directory, suffix string, g Glacier) error {
	n := g.Months
	times := make([]float64, n)
	years := make([]int32, n)
	months := make([]int32, n)
	length := make([]float64, n)
	volume := make([]float64, n)

	for i := 0; i < n; i++ {
		times[i] = float64(g.DiagnosticsStartYear) + float64(i)/12
		years[i] = int32(g.DiagnosticsStartYear + i/12)
		months[i] = int32(i%12 + 1)
		length[i] = g.Length(i)
		volume[i] = g.Volume(i)
	}

	ds := dataset.New()
	ds.Attributes["description"] = "synthetic model diagnostics"
	ds.SetVariable("time", []string{"time"}, times, map[string]interface{}{"description": "Floating year"})
	ds.SetVariable("calendar_year", []string{"time"}, years, nil)
	ds.SetVariable("calendar_month", []string{"time"}, months, nil)
	ds.SetVariable("length_m", []string{"time"}, length, map[string]interface{}{"units": "m"})
	ds.SetVariable("volume_m3", []string{"time"}, volume, map[string]interface{}{"units": "m 3"})

	path, err := d.GetFilepath(gdir.ModelDiagnostics, suffix)
	if err != nil {
		return err
	}
	return dataset.Write(path, ds)
}

// WriteClimate writes climate_monthly.nc, one record on the first of each month
func WriteClimate(d *gdir.Directory, g Glacier) error {
	tu, err := dataset.ParseTimeUnits(ClimateTimeUnits)
	if err != nil {
		return err
	}

	var (
		offsets []int32
		temp    []float64
		prcp    []float64
	)
	for y := g.ClimateStartYear; y <= g.ClimateEndYear; y++ {
		for m := time.January; m <= time.December; m++ {
			t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
			offsets = append(offsets, int32(tu.Encode(t)))
			temp = append(temp, g.Temp(t))
			prcp = append(prcp, g.Prcp(t))
		}
	}

	ds := dataset.New()
	ds.Attributes["ref_hgt"] = []float64{g.RefHgt}
	ds.Attributes["ref_pix_lon"] = []float64{10.75}
	ds.Attributes["ref_pix_lat"] = []float64{46.8}
	ds.SetVariable("time", []string{"time"}, offsets, map[string]interface{}{
		"units":    ClimateTimeUnits,
		"calendar": "standard",
	})
	ds.SetVariable("temp", []string{"time"}, temp, map[string]interface{}{"units": "degC"})
	ds.SetVariable("prcp", []string{"time"}, prcp, map[string]interface{}{"units": "kg m-2"})

	path, err := d.GetFilepath(gdir.ClimateMonthly, "")
	if err != nil {
		return err
	}
	return dataset.Write(path, ds)
}

// WriteStatistics writes diagnostics.json
func WriteStatistics(d *gdir.Directory, values map[string]interface{}) error {
	path, err := d.GetFilepath(gdir.Diagnostics, "")
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding statistics: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
