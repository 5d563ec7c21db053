package glacier

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/glacierpost/internal/gdir"
	"github.com/chrissnell/glacierpost/internal/synth"
)

func monthlyRecord(startYear, endYear int, temp func(time.Time) float64) ([]time.Time, []float64, []float64) {
	var (
		times []time.Time
		t     []float64
		p     []float64
	)
	for y := startYear; y <= endYear; y++ {
		for m := time.January; m <= time.December; m++ {
			ts := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
			times = append(times, ts)
			t = append(t, temp(ts))
			p = append(p, float64(m)*10)
		}
	}
	return times, t, p
}

func TestMonthlyClimatology(t *testing.T) {
	tests := []struct {
		name      string
		startYear int
		endYear   int
		partial   bool
		temp      func(time.Time) float64
		wantErr   error
		check     func(t *testing.T, rows []ClimateStatistic)
	}{
		{
			name:      "full window of 31 years gives 12 rows",
			startYear: 1980,
			endYear:   2020,
			temp:      func(ts time.Time) float64 { return float64(ts.Month()) },
			check: func(t *testing.T, rows []ClimateStatistic) {
				for i, r := range rows {
					if r.Month != i+1 || r.TempCelsius != float64(i+1) {
						t.Errorf("row %d: unexpected %+v", i, r)
					}
					if r.PrcpMmMonth != float64(i+1)*10 {
						t.Errorf("row %d: expected prcp %g, got %g", i, float64(i+1)*10, r.PrcpMmMonth)
					}
				}
			},
		},
		{
			name:      "years outside the window are excluded",
			startYear: 1975,
			endYear:   2020,
			temp: func(ts time.Time) float64 {
				if ts.Year() < 1985 || ts.Year() > 2015 {
					return 100
				}
				return -1
			},
			check: func(t *testing.T, rows []ClimateStatistic) {
				for i, r := range rows {
					if r.TempCelsius != -1 {
						t.Errorf("row %d: out-of-window data leaked, got %g", i, r.TempCelsius)
					}
				}
			},
		},
		{
			name:      "mean across years",
			startYear: 1985,
			endYear:   2015,
			temp:      func(ts time.Time) float64 { return float64(ts.Year() - 1985) },
			check: func(t *testing.T, rows []ClimateStatistic) {
				// mean of 0..30
				for i, r := range rows {
					if math.Abs(r.TempCelsius-15) > 1e-9 {
						t.Errorf("row %d: expected 15, got %g", i, r.TempCelsius)
					}
				}
			},
		},
		{
			name:      "short record fails by default",
			startYear: 1985,
			endYear:   1986,
			temp:      func(time.Time) float64 { return 0 },
			wantErr:   ErrCoverage,
		},
		{
			name:      "short record accepted with partial window",
			startYear: 1985,
			endYear:   1986,
			partial:   true,
			temp:      func(time.Time) float64 { return 2.5 },
			check: func(t *testing.T, rows []ClimateStatistic) {
				if len(rows) != 12 {
					t.Fatalf("expected 12 rows, got %d", len(rows))
				}
				for i, r := range rows {
					if r.TempCelsius != 2.5 {
						t.Errorf("row %d: expected 2.5, got %g", i, r.TempCelsius)
					}
				}
			},
		},
		{
			name:      "record entirely outside the window",
			startYear: 1950,
			endYear:   1960,
			partial:   true,
			temp:      func(time.Time) float64 { return 0 },
			wantErr:   ErrCoverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, temp, prcp := monthlyRecord(tt.startYear, tt.endYear, tt.temp)
			rows, err := MonthlyClimatology(times, temp, prcp, DefaultStartYear, DefaultEndYear, tt.partial)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != 12 {
				t.Fatalf("expected 12 rows, got %d", len(rows))
			}
			tt.check(t, rows)
		})
	}
}

func TestApplyLapseRate(t *testing.T) {
	rows := []ClimateStatistic{{Month: 1, TempCelsius: -4}, {Month: 2, TempCelsius: 1.25}}

	ApplyLapseRate(rows, 2000, 2000, DefaultLapseRate)
	if rows[0].TempCelsius != -4 || rows[1].TempCelsius != 1.25 {
		t.Errorf("equal elevations must not change temperature, got %+v", rows)
	}

	ApplyLapseRate(rows, 2000, 1900, DefaultLapseRate)
	if math.Abs(rows[0].TempCelsius-(-4+0.65)) > 1e-9 {
		t.Errorf("expected %g, got %g", -4+0.65, rows[0].TempCelsius)
	}
}

func writeConstantClimate(t *testing.T, startYear, endYear int, temp, refHgt, minElev float64) *gdir.Directory {
	t.Helper()
	g := synth.Default("RGI60-11.01450")
	g.ClimateStartYear = startYear
	g.ClimateEndYear = endYear
	g.Temp = func(time.Time) float64 { return temp }
	g.RefHgt = refHgt
	g.FlowlineMinElev = minElev

	dir, err := synth.Write(t.TempDir(), g)
	if err != nil {
		t.Fatalf("synth.Write: %v", err)
	}
	return dir
}

func TestReadClimateStatisticsTwoYears(t *testing.T) {
	const (
		temp = -3.5
		ref  = 2500.0
	)
	dir := writeConstantClimate(t, 1985, 1986, temp, ref, ref-100)

	cs, err := ReadClimateStatistics(dir, WithPartialWindow())
	if err != nil {
		t.Fatalf("ReadClimateStatistics: %v", err)
	}

	if len(cs.Rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(cs.Rows))
	}
	for i, r := range cs.Rows {
		if r.Month != i+1 {
			t.Errorf("row %d: expected month %d, got %d", i, i+1, r.Month)
		}
		if math.Abs(r.TempCelsius-(temp+0.65)) > 1e-9 {
			t.Errorf("row %d: expected %g, got %g", i, temp+0.65, r.TempCelsius)
		}
	}
	if cs.RefHgt != ref || cs.FlowlineMinElev != ref-100 {
		t.Errorf("unexpected elevations %g %g", cs.RefHgt, cs.FlowlineMinElev)
	}

	if _, err := ReadClimateStatistics(dir); !errors.Is(err, ErrCoverage) {
		t.Errorf("expected ErrCoverage without partial window, got %v", err)
	}
}

func TestReadClimateStatisticsNoCorrection(t *testing.T) {
	dir := writeConstantClimate(t, 1980, 2018, 1.75, 2300, 2300)

	cs, err := ReadClimateStatistics(dir)
	if err != nil {
		t.Fatalf("ReadClimateStatistics: %v", err)
	}
	for i, r := range cs.Rows {
		if r.TempCelsius != 1.75 {
			t.Errorf("row %d: expected uncorrected 1.75, got %g", i, r.TempCelsius)
		}
	}
}

func TestReadClimateStatisticsMissingInputs(t *testing.T) {
	g := synth.Default("RGI60-11.00897")
	g.FlowlineMinElev = math.NaN()
	dir, err := synth.Write(t.TempDir(), g)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ReadClimateStatistics(dir); !errors.Is(err, ErrStatisticsNotFound) {
		t.Errorf("expected ErrStatisticsNotFound, got %v", err)
	}

	if err := os.Remove(filepath.Join(dir.Path, "climate_monthly.nc")); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadClimateStatistics(dir); !errors.Is(err, gdir.ErrNotFound) {
		t.Errorf("expected gdir.ErrNotFound, got %v", err)
	}
}

func TestReadClimateStatisticsCSVProvider(t *testing.T) {
	g := synth.Default("RGI60-11.00897")
	g.FlowlineMinElev = math.NaN()
	root := t.TempDir()
	dir, err := synth.Write(root, g)
	if err != nil {
		t.Fatal(err)
	}

	csvPath := filepath.Join(root, "glacier_statistics.csv")
	content := "rgi_id,rgi_region,flowline_min_elev,flowline_max_elev\n" +
		"RGI60-11.00001,11,2000,3000\n" +
		"RGI60-11.00897,11,2352,3700\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := ChainProvider{DiagnosticsFileProvider{}, CompiledCSVProvider{Path: csvPath}}
	cs, err := ReadClimateStatistics(dir, WithStatisticsProvider(provider))
	if err != nil {
		t.Fatalf("ReadClimateStatistics: %v", err)
	}
	if cs.FlowlineMinElev != 2352 {
		t.Errorf("expected flowline_min_elev 2352 from CSV, got %g", cs.FlowlineMinElev)
	}

	uncorrected, err := ReadClimateStatistics(dir, WithStatisticsProvider(provider), WithLapseRate(0))
	if err != nil {
		t.Fatal(err)
	}
	correction := (g.RefHgt - 2352) * DefaultLapseRate
	for i := range cs.Rows {
		got := cs.Rows[i].TempCelsius - uncorrected.Rows[i].TempCelsius
		if math.Abs(got-correction) > 1e-9 {
			t.Errorf("row %d: expected correction %g, got %g", i, correction, got)
		}
	}
}

func TestCompiledCSVProviderUnknownGlacier(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "glacier_statistics.csv")
	if err := os.WriteFile(csvPath, []byte("rgi_id,flowline_min_elev\nRGI60-11.00001,2000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := CompiledCSVProvider{Path: csvPath}.GlacierStatistics(&gdir.Directory{RGIID: "RGI60-11.00897"})
	if !errors.Is(err, ErrStatisticsNotFound) {
		t.Errorf("expected ErrStatisticsNotFound, got %v", err)
	}
}
