package gdir

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestPerGlacierPath(t *testing.T) {
	tests := []struct {
		name     string
		rgiID    string
		expected string
		wantErr  bool
	}{
		{
			name:     "hintereisferner",
			rgiID:    "RGI60-11.00897",
			expected: filepath.Join("root", "per_glacier", "RGI60-11", "RGI60-11.00", "RGI60-11.00897"),
		},
		{
			name:    "too short",
			rgiID:   "RGI60-11",
			wantErr: true,
		},
		{
			name:    "no separator",
			rgiID:   "RGI601100897",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PerGlacierPath("root", tt.rgiID)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRGIID) {
					t.Fatalf("expected ErrInvalidRGIID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLocateAndRequire(t *testing.T) {
	root := t.TempDir()
	path, err := PerGlacierPath(root, "RGI60-11.00897")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"model_diagnostics.nc", "model_diagnostics_historical.nc", "climate_monthly.nc"} {
		if err := os.WriteFile(filepath.Join(path, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d, err := Locate(root, "RGI60-11.00897")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if d.RGIID != "RGI60-11.00897" {
		t.Errorf("unexpected RGI id %q", d.RGIID)
	}

	got, err := d.Require(ModelDiagnostics, "_historical")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if filepath.Base(got) != "model_diagnostics_historical.nc" {
		t.Errorf("unexpected path %s", got)
	}

	if _, err := d.Require(ModelDiagnostics, "_ssp585"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing suffix, got %v", err)
	}

	if _, err := d.GetFilepath("inversion_flowlines", ""); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("expected ErrUnknownFile, got %v", err)
	}

	if d.HasFile(Diagnostics, "") {
		t.Error("diagnostics.json should not exist")
	}

	suffixes, err := d.Suffixes(ModelDiagnostics)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(suffixes)
	if len(suffixes) != 2 || suffixes[0] != "" || suffixes[1] != "_historical" {
		t.Errorf("unexpected suffixes %q", suffixes)
	}
}

func TestLocateMissing(t *testing.T) {
	if _, err := Locate(t.TempDir(), "RGI60-11.00001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSuffixCannotLeaveDirectory(t *testing.T) {
	root := t.TempDir()
	path, err := PerGlacierPath(root, "RGI60-11.00897")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	// a file that a traversing suffix would reach
	if err := os.WriteFile(filepath.Join(root, "secret.nc"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Locate(root, "RGI60-11.00897")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		suffix string
	}{
		{"parent segments", "/../../../../../secret"},
		{"dot dot without separator", "_.._x"},
		{"backslash", `\..\secret`},
		{"forward slash", "_hist/other"},
		{"nul byte", "_hist\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Require(ModelDiagnostics, tt.suffix); !errors.Is(err, ErrInvalidSuffix) {
				t.Errorf("expected ErrInvalidSuffix, got %v", err)
			}
			if _, err := d.GetFilepath(ModelDiagnostics, tt.suffix); !errors.Is(err, ErrInvalidSuffix) {
				t.Errorf("GetFilepath: expected ErrInvalidSuffix, got %v", err)
			}
		})
	}

	if err := ValidateSuffix("_historical"); err != nil {
		t.Errorf("plain suffix rejected: %v", err)
	}
	if err := ValidateSuffix(""); err != nil {
		t.Errorf("empty suffix rejected: %v", err)
	}
}
