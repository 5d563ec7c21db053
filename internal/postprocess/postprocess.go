// Package postprocess binds the loaded configuration to the glacier readers: it resolves
// glacier directories and turns the climate settings into reader options.
package postprocess

import (
	"github.com/chrissnell/glacierpost/internal/gdir"
	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/pkg/config"
)

// Processor reads the post-processed tables for configured or ad-hoc glaciers
type Processor struct {
	cfg  *config.ConfigData
	opts []glacier.ClimateOption
}

// New returns a Processor for cfg. Defaults must already be applied.
func New(cfg *config.ConfigData) *Processor {
	return &Processor{
		cfg:  cfg,
		opts: ClimateOptions(cfg.Climate),
	}
}

// ClimateOptions converts the climate section of the configuration
func ClimateOptions(c config.ClimateData) []glacier.ClimateOption {
	opts := []glacier.ClimateOption{
		glacier.WithWindow(c.StartYear, c.EndYear),
		glacier.WithLapseRate(c.LapseRate),
	}
	if c.Input != "" {
		opts = append(opts, glacier.WithClimateInput(c.Input, ""))
	}
	if c.AllowPartialWindow {
		opts = append(opts, glacier.WithPartialWindow())
	}
	if c.StatisticsCSV != "" {
		opts = append(opts, glacier.WithStatisticsProvider(glacier.ChainProvider{
			glacier.DiagnosticsFileProvider{},
			glacier.CompiledCSVProvider{Path: c.StatisticsCSV},
		}))
	}
	return opts
}

// Glaciers returns the configured glaciers
func (p *Processor) Glaciers() []config.GlacierData {
	return p.cfg.Glaciers
}

// Directory resolves the glacier directory for rgiID. An explicit path from the
// configuration wins over the per-glacier layout below data_root.
func (p *Processor) Directory(rgiID string) (*gdir.Directory, error) {
	for _, g := range p.cfg.Glaciers {
		if g.RGIID == rgiID && g.Path != "" {
			return directoryFromPath(g)
		}
	}
	return gdir.Locate(p.cfg.DataRoot, rgiID)
}

// DirectoryFor resolves the directory of a configured glacier
func (p *Processor) DirectoryFor(g config.GlacierData) (*gdir.Directory, error) {
	if g.Path != "" {
		return directoryFromPath(g)
	}
	return gdir.Locate(p.cfg.DataRoot, g.RGIID)
}

func directoryFromPath(g config.GlacierData) (*gdir.Directory, error) {
	d, err := gdir.New(g.Path)
	if err != nil {
		return nil, err
	}
	if g.RGIID != "" {
		d.RGIID = g.RGIID
	}
	return d, nil
}

// RunResults reads the run-results table of one run
func (p *Processor) RunResults(rgiID, suffix string) (*glacier.RunResults, error) {
	d, err := p.Directory(rgiID)
	if err != nil {
		return nil, err
	}
	return glacier.ReadRunResults(d, suffix)
}

// ClimateStatistics reads the terminus climatology of a glacier
func (p *Processor) ClimateStatistics(rgiID string) (*glacier.ClimateStatistics, error) {
	d, err := p.Directory(rgiID)
	if err != nil {
		return nil, err
	}
	return glacier.ReadClimateStatistics(d, p.opts...)
}

// ClimateStatisticsFor reads the climatology of a resolved directory
func (p *Processor) ClimateStatisticsFor(d *gdir.Directory) (*glacier.ClimateStatistics, error) {
	return glacier.ReadClimateStatistics(d, p.opts...)
}
