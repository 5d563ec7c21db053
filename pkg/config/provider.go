package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, with defaults applied
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetGlaciers() ([]GlacierData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	// DataRoot is the model working directory holding per_glacier/
	DataRoot string          `json:"data_root" yaml:"data_root"`
	Glaciers []GlacierData   `json:"glaciers" yaml:"glaciers"`
	Climate  ClimateData     `json:"climate" yaml:"climate"`
	Storage  StorageData     `json:"storage,omitempty" yaml:"storage,omitempty"`
	REST     *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// GlacierData selects one glacier directory and the runs to post-process.
// Path overrides the per-glacier location derived from DataRoot and RGIID.
type GlacierData struct {
	RGIID    string   `json:"rgi_id" yaml:"rgi_id"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Suffixes []string `json:"suffixes,omitempty" yaml:"suffixes,omitempty"`
}

// ClimateData holds the climate-statistics settings
type ClimateData struct {
	StartYear          int     `json:"start_year,omitempty" yaml:"start_year,omitempty"`
	EndYear            int     `json:"end_year,omitempty" yaml:"end_year,omitempty"`
	LapseRate          float64 `json:"lapse_rate,omitempty" yaml:"lapse_rate,omitempty"`
	AllowPartialWindow bool    `json:"allow_partial_window,omitempty" yaml:"allow_partial_window,omitempty"`
	Input              string  `json:"input,omitempty" yaml:"input,omitempty"`
	StatisticsCSV      string  `json:"statistics_csv,omitempty" yaml:"statistics_csv,omitempty"`
}

// StorageData holds the configuration for the export stores
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// RESTServerData configures the read-only HTTP API
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
}
