// Package config provides configuration loading and validation for the
// advisor toolchain.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for a client's ingestion
// and reporting runs.
type Config struct {
	HeaderAliases map[string][]string `yaml:"header_aliases,omitempty"`
	Archive       *ArchiveConfig      `yaml:"archive,omitempty"`
	Client        ClientConfig        `yaml:"client"`
	Ingest        IngestConfig        `yaml:"ingest,omitempty"`
	Database      DatabaseConfig      `yaml:"database,omitempty"`
	Storage       StorageConfig       `yaml:"storage,omitempty"`
}

// ClientConfig contains client identification information.
type ClientConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// IngestConfig controls CSV decoding and mapping behavior.
type IngestConfig struct {
	// Encodings is the decode attempt order. Defaults to utf-8, latin-1.
	Encodings []string `yaml:"encodings,omitempty"`
	// DefaultCurrency is assumed when savings are present without a
	// currency column. Defaults to USD.
	DefaultCurrency string `yaml:"default_currency,omitempty"`
	// TopN is the size of the top-savings list. Defaults to 10.
	TopN int `yaml:"top_n,omitempty"`
}

// DatabaseConfig locates the SQLite job history database.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// StorageConfig locates the file-based job result store.
type StorageConfig struct {
	DataDir string `yaml:"data_dir,omitempty"`
}

// ArchiveConfig configures report upload to S3-compatible object storage.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`
	// Endpoint overrides the S3 endpoint for MinIO or gateway setups.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Defaults applied by LoadConfig.
const (
	DefaultCurrency = "USD"
	DefaultTopN     = 10
	DefaultDataDir  = "data"
	DefaultDBPath   = "data/advisor.db"
)

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted source (config file)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Ingest.DefaultCurrency == "" {
		c.Ingest.DefaultCurrency = DefaultCurrency
	}
	if c.Ingest.TopN == 0 {
		c.Ingest.TopN = DefaultTopN
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = DefaultDataDir
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
}

// Validate ensures the configuration is valid.
func (c *Config) Validate() error {
	if c.Client.Name == "" {
		return fmt.Errorf("client.name is required")
	}
	if c.Client.Environment == "" {
		return fmt.Errorf("client.environment is required")
	}

	if len(c.Ingest.DefaultCurrency) != 3 {
		return fmt.Errorf("ingest.default_currency must be a 3-letter code, got %q", c.Ingest.DefaultCurrency)
	}
	if c.Ingest.TopN < 0 {
		return fmt.Errorf("ingest.top_n must not be negative")
	}

	for _, enc := range c.Ingest.Encodings {
		switch strings.ToLower(enc) {
		case "utf-8", "utf8", "latin-1", "iso-8859-1", "iso8859-1":
		default:
			return fmt.Errorf("unsupported encoding in ingest.encodings: %s", enc)
		}
	}

	if c.Archive != nil && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archive is configured")
	}

	return nil
}
