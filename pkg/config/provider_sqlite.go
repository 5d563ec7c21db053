package config

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Schema creates the configuration tables. Every row hangs off the "default" config.
const Schema = `
CREATE TABLE IF NOT EXISTS configs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	data_root  TEXT,
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS glaciers (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id INTEGER NOT NULL REFERENCES configs(id) ON DELETE CASCADE,
	rgi_id    TEXT,
	path      TEXT,
	suffixes  TEXT
);
CREATE TABLE IF NOT EXISTS climate_configs (
	config_id            INTEGER PRIMARY KEY REFERENCES configs(id) ON DELETE CASCADE,
	start_year           INTEGER,
	end_year             INTEGER,
	lapse_rate           REAL,
	allow_partial_window INTEGER DEFAULT 0,
	input                TEXT,
	statistics_csv       TEXT
);
CREATE TABLE IF NOT EXISTS storage_configs (
	id                          INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id                   INTEGER NOT NULL REFERENCES configs(id) ON DELETE CASCADE,
	backend_type                TEXT NOT NULL,
	enabled                     INTEGER DEFAULT 1,
	sqlite_path                 TEXT,
	timescale_connection_string TEXT
);
CREATE TABLE IF NOT EXISTS rest_configs (
	config_id   INTEGER PRIMARY KEY REFERENCES configs(id) ON DELETE CASCADE,
	listen_addr TEXT,
	port        INTEGER
);
`

const defaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (and if needed initializes) a SQLite configuration database
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create configuration schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	configID, err := s.configID()
	if err != nil {
		return nil, err
	}

	var dataRoot sql.NullString
	if err := s.db.QueryRow(`SELECT data_root FROM configs WHERE id = ?`, configID).Scan(&dataRoot); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.DataRoot = dataRoot.String

	if config.Glaciers, err = s.GetGlaciers(); err != nil {
		return nil, fmt.Errorf("failed to load glaciers: %w", err)
	}

	if err := s.loadClimate(configID, &config.Climate); err != nil {
		return nil, fmt.Errorf("failed to load climate config: %w", err)
	}

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	if config.REST, err = s.loadREST(configID); err != nil {
		return nil, fmt.Errorf("failed to load REST config: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.dbPath, err)
	}
	return config, nil
}

// GetGlaciers returns glacier selections from the database
func (s *SQLiteProvider) GetGlaciers() ([]GlacierData, error) {
	rows, err := s.db.Query(`
		SELECT rgi_id, path, suffixes
		FROM glaciers
		WHERE config_id = (SELECT id FROM configs WHERE name = ?)
		ORDER BY id`, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query glaciers: %w", err)
	}
	defer rows.Close()

	var glaciers []GlacierData
	for rows.Next() {
		var rgiID, path, suffixes sql.NullString
		if err := rows.Scan(&rgiID, &path, &suffixes); err != nil {
			return nil, fmt.Errorf("failed to scan glacier row: %w", err)
		}

		g := GlacierData{
			RGIID: rgiID.String,
			Path:  path.String,
		}
		if suffixes.Valid && suffixes.String != "" {
			if err := json.Unmarshal([]byte(suffixes.String), &g.Suffixes); err != nil {
				return nil, fmt.Errorf("glacier %s: bad suffix list %q: %w", g.RGIID, suffixes.String, err)
			}
		}
		glaciers = append(glaciers, g)
	}
	return glaciers, rows.Err()
}

// GetStorageConfig returns enabled export stores from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	rows, err := s.db.Query(`
		SELECT backend_type, sqlite_path, timescale_connection_string
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = ?) AND enabled = 1`, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage configs: %w", err)
	}
	defer rows.Close()

	storage := &StorageData{}
	for rows.Next() {
		var backendType string
		var sqlitePath, connStr sql.NullString
		if err := rows.Scan(&backendType, &sqlitePath, &connStr); err != nil {
			return nil, fmt.Errorf("failed to scan storage config row: %w", err)
		}

		switch backendType {
		case "sqlite":
			storage.SQLite = &SQLiteData{Path: sqlitePath.String}
		case "timescaledb":
			storage.TimescaleDB = &TimescaleDBData{ConnectionString: connStr.String}
		}
	}
	return storage, rows.Err()
}

func (s *SQLiteProvider) loadClimate(configID int64, c *ClimateData) error {
	var (
		startYear, endYear, partial sql.NullInt64
		lapseRate                   sql.NullFloat64
		input, statisticsCSV        sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT start_year, end_year, lapse_rate, allow_partial_window, input, statistics_csv
		FROM climate_configs WHERE config_id = ?`, configID).
		Scan(&startYear, &endYear, &lapseRate, &partial, &input, &statisticsCSV)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	c.StartYear = int(startYear.Int64)
	c.EndYear = int(endYear.Int64)
	c.LapseRate = lapseRate.Float64
	c.AllowPartialWindow = partial.Int64 != 0
	c.Input = input.String
	c.StatisticsCSV = statisticsCSV.String
	return nil
}

func (s *SQLiteProvider) loadREST(configID int64) (*RESTServerData, error) {
	var (
		listenAddr sql.NullString
		port       sql.NullInt64
	)
	err := s.db.QueryRow(`SELECT listen_addr, port FROM rest_configs WHERE config_id = ?`, configID).
		Scan(&listenAddr, &port)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &RESTServerData{ListenAddr: listenAddr.String, Port: int(port.Int64)}, nil
}

// IsReadOnly returns false; the SQLite backend can be rewritten with SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.upsertConfig(tx, defaultConfigName, configData.DataRoot)
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	for _, g := range configData.Glaciers {
		if err := s.insertGlacier(tx, configID, &g); err != nil {
			return fmt.Errorf("failed to insert glacier %s: %w", g.RGIID, err)
		}
	}

	c := configData.Climate
	_, err = tx.Exec(`
		INSERT INTO climate_configs (config_id, start_year, end_year, lapse_rate, allow_partial_window, input, statistics_csv)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		configID, c.StartYear, c.EndYear, c.LapseRate, c.AllowPartialWindow, nullString(c.Input), nullString(c.StatisticsCSV))
	if err != nil {
		return fmt.Errorf("failed to insert climate config: %w", err)
	}

	if st := configData.Storage.SQLite; st != nil {
		if _, err := tx.Exec(`INSERT INTO storage_configs (config_id, backend_type, sqlite_path) VALUES (?, 'sqlite', ?)`,
			configID, st.Path); err != nil {
			return fmt.Errorf("failed to insert sqlite storage config: %w", err)
		}
	}
	if ts := configData.Storage.TimescaleDB; ts != nil {
		if _, err := tx.Exec(`INSERT INTO storage_configs (config_id, backend_type, timescale_connection_string) VALUES (?, 'timescaledb', ?)`,
			configID, ts.ConnectionString); err != nil {
			return fmt.Errorf("failed to insert timescaledb storage config: %w", err)
		}
	}

	if r := configData.REST; r != nil {
		if _, err := tx.Exec(`INSERT INTO rest_configs (config_id, listen_addr, port) VALUES (?, ?, ?)`,
			configID, nullString(r.ListenAddr), r.Port); err != nil {
			return fmt.Errorf("failed to insert REST config: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteProvider) configID() (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM configs WHERE name = ?`, defaultConfigName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no %q configuration in %s", defaultConfigName, s.dbPath)
	}
	return id, err
}

func (s *SQLiteProvider) upsertConfig(tx *sql.Tx, name, dataRoot string) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO configs (name, data_root) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET data_root = excluded.data_root, updated_at = datetime('now')`,
		name, nullString(dataRoot))
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM glaciers WHERE config_id = ?",
		"DELETE FROM climate_configs WHERE config_id = ?",
		"DELETE FROM storage_configs WHERE config_id = ?",
		"DELETE FROM rest_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertGlacier(tx *sql.Tx, configID int64, g *GlacierData) error {
	var suffixes sql.NullString
	if len(g.Suffixes) > 0 {
		raw, err := json.Marshal(g.Suffixes)
		if err != nil {
			return err
		}
		suffixes = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := tx.Exec(`INSERT INTO glaciers (config_id, rgi_id, path, suffixes) VALUES (?, ?, ?, ?)`,
		configID, nullString(g.RGIID), nullString(g.Path), suffixes)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
