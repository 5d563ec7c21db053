// Package gdir locates the files a glacier model run leaves behind for a single glacier.
//
// A glacier directory follows the per-glacier layout of the model's working directory:
//
//	<root>/per_glacier/RGI60-11/RGI60-11.00/RGI60-11.00897/
//	    model_diagnostics_historical.nc
//	    climate_monthly.nc
//	    diagnostics.json
package gdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File base names understood by GetFilepath
const (
	ModelDiagnostics  = "model_diagnostics"
	ClimateMonthly    = "climate_monthly"
	ClimateHistorical = "climate_historical"
	Diagnostics       = "diagnostics"
	GlacierStatistics = "glacier_statistics"
)

var extensions = map[string]string{
	ModelDiagnostics:  ".nc",
	ClimateMonthly:    ".nc",
	ClimateHistorical: ".nc",
	Diagnostics:       ".json",
	GlacierStatistics: ".csv",
}

var (
	// ErrNotFound is returned when a requested file does not exist in the glacier directory
	ErrNotFound = errors.New("glacier directory file not found")

	// ErrUnknownFile is returned for a base name the directory layout does not define
	ErrUnknownFile = errors.New("unknown glacier directory file")

	// ErrInvalidRGIID is returned when an RGI identifier is too short to derive its region folders
	ErrInvalidRGIID = errors.New("invalid RGI identifier")

	// ErrInvalidSuffix is returned for run suffixes that would leave the glacier directory
	ErrInvalidSuffix = errors.New("invalid run suffix")
)

// Directory is the handle for one glacier's stored model outputs
type Directory struct {
	RGIID string
	Path  string
}

// New opens an existing glacier directory. The RGI identifier is taken from the
// directory name.
func New(path string) (*Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("glacier directory %s is not a directory", abs)
	}

	return &Directory{
		RGIID: filepath.Base(abs),
		Path:  abs,
	}, nil
}

// PerGlacierPath returns where the directory for rgiID lives below root
func PerGlacierPath(root, rgiID string) (string, error) {
	// RGI60-11.00897 -> RGI60-11 / RGI60-11.00
	if len(rgiID) < 11 || !strings.Contains(rgiID, "-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRGIID, rgiID)
	}
	return filepath.Join(root, "per_glacier", rgiID[:8], rgiID[:11], rgiID), nil
}

// Locate opens the glacier directory for rgiID inside a model working directory
func Locate(root, rgiID string) (*Directory, error) {
	path, err := PerGlacierPath(root, rgiID)
	if err != nil {
		return nil, err
	}

	d, err := New(path)
	if err != nil {
		return nil, err
	}
	d.RGIID = rgiID
	return d, nil
}

// GetFilepath returns the path of a named file, with an optional suffix that
// distinguishes runs (e.g. "_historical", "_spinup"). The file may not exist.
func (d *Directory) GetFilepath(name, suffix string) (string, error) {
	ext, ok := extensions[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFile, name)
	}
	if err := ValidateSuffix(suffix); err != nil {
		return "", err
	}
	return filepath.Join(d.Path, name+suffix+ext), nil
}

// ValidateSuffix rejects suffixes that could resolve outside the glacier directory
func ValidateSuffix(suffix string) error {
	if strings.ContainsAny(suffix, "/\\\x00") || strings.Contains(suffix, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSuffix, suffix)
	}
	return nil
}

// Require is GetFilepath plus an existence check. Missing files wrap ErrNotFound.
func (d *Directory) Require(name, suffix string) (string, error) {
	path, err := d.GetFilepath(name, suffix)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (glacier %s)", ErrNotFound, filepath.Base(path), d.RGIID)
		}
		return "", err
	}
	return path, nil
}

// HasFile reports whether the named file exists
func (d *Directory) HasFile(name, suffix string) bool {
	_, err := d.Require(name, suffix)
	return err == nil
}

// Suffixes lists the run suffixes for which a file with the given base name exists,
// e.g. ["", "_historical"] for model_diagnostics.nc and model_diagnostics_historical.nc.
func (d *Directory) Suffixes(name string) ([]string, error) {
	ext, ok := extensions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFile, name)
	}

	matches, err := filepath.Glob(filepath.Join(d.Path, name+"*"+ext))
	if err != nil {
		return nil, err
	}

	suffixes := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		suffixes = append(suffixes, strings.TrimSuffix(strings.TrimPrefix(base, name), ext))
	}
	return suffixes, nil
}

func (d *Directory) String() string {
	return d.RGIID
}
