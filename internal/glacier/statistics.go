package glacier

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/glacierpost/internal/gdir"
)

// StatFlowlineMinElev is the statistics key for the lowest flowline surface elevation (m)
const StatFlowlineMinElev = "flowline_min_elev"

// ErrStatisticsNotFound is returned when no provider has statistics for a glacier
var ErrStatisticsNotFound = errors.New("glacier statistics not found")

// Statistics holds the precomputed glacier statistics the climate reader needs
type Statistics struct {
	RGIID           string
	FlowlineMinElev float64
	Values          map[string]float64
}

// StatisticsProvider supplies the statistics of a glacier
type StatisticsProvider interface {
	GlacierStatistics(dir *gdir.Directory) (Statistics, error)
}

// DiagnosticsFileProvider reads statistics from the diagnostics.json file the model
// writes into each glacier directory
type DiagnosticsFileProvider struct{}

// GlacierStatistics implements StatisticsProvider
func (DiagnosticsFileProvider) GlacierStatistics(dir *gdir.Directory) (Statistics, error) {
	path, err := dir.Require(gdir.Diagnostics, "")
	if err != nil {
		return Statistics{}, fmt.Errorf("%w: %v", ErrStatisticsNotFound, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Statistics{}, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Statistics{}, fmt.Errorf("error parsing %s: %w", path, err)
	}

	values := make(map[string]float64)
	for k, v := range doc {
		if f, ok := v.(float64); ok {
			values[k] = f
		}
	}

	return newStatistics(dir.RGIID, values, path)
}

// CompiledCSVProvider reads statistics from a compiled glacier_statistics.csv, one row
// per glacier keyed by the rgi_id column
type CompiledCSVProvider struct {
	Path string
}

// GlacierStatistics implements StatisticsProvider
func (p CompiledCSVProvider) GlacierStatistics(dir *gdir.Directory) (Statistics, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Statistics{}, fmt.Errorf("%w: %s", ErrStatisticsNotFound, p.Path)
		}
		return Statistics{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return Statistics{}, fmt.Errorf("error reading header of %s: %w", p.Path, err)
	}

	idCol := -1
	for i, h := range header {
		if strings.TrimSpace(h) == "rgi_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return Statistics{}, fmt.Errorf("%s has no rgi_id column", p.Path)
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Statistics{}, fmt.Errorf("error reading %s: %w", p.Path, err)
		}
		if rec[idCol] != dir.RGIID {
			continue
		}

		values := make(map[string]float64)
		for i, h := range header {
			if i >= len(rec) {
				break
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
				values[strings.TrimSpace(h)] = v
			}
		}
		return newStatistics(dir.RGIID, values, p.Path)
	}

	return Statistics{}, fmt.Errorf("%w: %s not in %s", ErrStatisticsNotFound, dir.RGIID, p.Path)
}

// ChainProvider asks each provider in turn and returns the first success
type ChainProvider []StatisticsProvider

// GlacierStatistics implements StatisticsProvider
func (c ChainProvider) GlacierStatistics(dir *gdir.Directory) (Statistics, error) {
	var errs []error
	for _, p := range c {
		s, err := p.GlacierStatistics(dir)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Statistics{}, fmt.Errorf("%w: no providers configured", ErrStatisticsNotFound)
	}
	return Statistics{}, errors.Join(errs...)
}

func newStatistics(rgiID string, values map[string]float64, source string) (Statistics, error) {
	minElev, ok := values[StatFlowlineMinElev]
	if !ok {
		return Statistics{}, fmt.Errorf("%w: %s has no %s for %s", ErrStatisticsNotFound, source, StatFlowlineMinElev, rgiID)
	}
	return Statistics{
		RGIID:           rgiID,
		FlowlineMinElev: minElev,
		Values:          values,
	}, nil
}
