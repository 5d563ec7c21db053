package config

import (
	"errors"
	"fmt"
)

const (
	DefaultStartYear    = 1985
	DefaultEndYear      = 2015
	DefaultLapseRate    = 0.0065
	DefaultClimateInput = "climate_monthly"
	DefaultListenAddr   = "0.0.0.0"
	DefaultPort         = 8080
)

// ApplyDefaults fills in unset climate and REST settings
func (c *ConfigData) ApplyDefaults() {
	if c.Climate.StartYear == 0 {
		c.Climate.StartYear = DefaultStartYear
	}
	if c.Climate.EndYear == 0 {
		c.Climate.EndYear = DefaultEndYear
	}
	if c.Climate.LapseRate == 0 {
		c.Climate.LapseRate = DefaultLapseRate
	}
	if c.Climate.Input == "" {
		c.Climate.Input = DefaultClimateInput
	}

	if c.REST != nil {
		if c.REST.ListenAddr == "" {
			c.REST.ListenAddr = DefaultListenAddr
		}
		if c.REST.Port == 0 {
			c.REST.Port = DefaultPort
		}
	}

	for i := range c.Glaciers {
		if len(c.Glaciers[i].Suffixes) == 0 {
			c.Glaciers[i].Suffixes = []string{""}
		}
	}
}

// Validate reports every problem found in the configuration
func (c *ConfigData) Validate() error {
	var errs []error

	if c.DataRoot == "" {
		for _, g := range c.Glaciers {
			if g.Path == "" {
				errs = append(errs, fmt.Errorf("glacier %s: path is required when data_root is not set", g.RGIID))
			}
		}
	}

	seen := make(map[string]bool)
	for i, g := range c.Glaciers {
		if g.RGIID == "" && g.Path == "" {
			errs = append(errs, fmt.Errorf("glacier #%d: rgi_id or path is required", i))
			continue
		}
		if g.RGIID != "" {
			if seen[g.RGIID] {
				errs = append(errs, fmt.Errorf("glacier %s is listed more than once", g.RGIID))
			}
			seen[g.RGIID] = true
		}
	}

	if c.Climate.EndYear < c.Climate.StartYear {
		errs = append(errs, fmt.Errorf("climate.end_year %d is before climate.start_year %d", c.Climate.EndYear, c.Climate.StartYear))
	}

	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		errs = append(errs, errors.New("storage.sqlite.path is required"))
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		errs = append(errs, errors.New("storage.timescaledb.connection_string is required"))
	}

	if c.REST != nil && (c.REST.Port < 0 || c.REST.Port > 65535) {
		errs = append(errs, fmt.Errorf("rest.port %d is out of range", c.REST.Port))
	}

	return errors.Join(errs...)
}
