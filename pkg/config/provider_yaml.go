package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var config ConfigData
	if err := yaml.Unmarshal(cfgFile, &config); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", y.filename, err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", y.filename, err)
	}

	y.config = &config
	return y.config, nil
}

// GetGlaciers returns the configured glaciers
func (y *YAMLProvider) GetGlaciers() ([]GlacierData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Glaciers, nil
}

// GetStorageConfig returns the export store configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// IsReadOnly returns true; YAML configuration is edited by hand
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}
