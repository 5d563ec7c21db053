package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/chrissnell/glacierpost/internal/glacier"
)

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	batch := uuid.New()

	r := &glacier.RunResults{RGIID: "RGI60-11.00897", Suffix: "_historical"}
	for i := 0; i < 40; i++ {
		r.Rows = append(r.Rows, glacier.RunResult{Time: 2003 + float64(i)/12, LengthM: 7000, Month: i%12 + 1})
	}
	if err := s.SaveRunResults(ctx, batch, r); err != nil {
		t.Fatalf("SaveRunResults: %v", err)
	}
	// re-exporting the same batch replaces rows
	if err := s.SaveRunResults(ctx, batch, r); err != nil {
		t.Fatalf("second SaveRunResults: %v", err)
	}

	n, err := s.CountRunResults(ctx, batch, r.RGIID, r.Suffix)
	if err != nil {
		t.Fatal(err)
	}
	if n != 40 {
		t.Errorf("expected 40 rows, got %d", n)
	}

	c := &glacier.ClimateStatistics{RGIID: "RGI60-11.00897", StartYear: 1985, EndYear: 2015, RefHgt: 2252, FlowlineMinElev: 2446}
	for m := 12; m >= 1; m-- {
		c.Rows = append(c.Rows, glacier.ClimateStatistic{Month: m, TempCelsius: float64(m) - 6.5, PrcpMmMonth: 90})
	}
	if err := s.SaveClimateStatistics(ctx, batch, c); err != nil {
		t.Fatalf("SaveClimateStatistics: %v", err)
	}

	got, err := s.LoadClimateStatistics(ctx, batch, c.RGIID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(got))
	}
	if got[0].Month != 1 || got[0].TempCelsius != -5.5 || got[0].PrcpMmMonth != 90 {
		t.Errorf("unexpected first row %+v", got[0])
	}

	other, err := s.LoadClimateStatistics(ctx, uuid.New(), c.RGIID)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("expected no rows for an unknown batch, got %d", len(other))
	}
}
