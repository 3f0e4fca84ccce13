// Package config provides configuration loading for matchd.
//
// Configuration comes from a YAML file overridden by environment variables,
// with hardcoded defaults underneath.
package config

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/matchd/internal/logging"
	"github.com/fyrsmithlabs/matchd/internal/record"
)

// Config holds the complete matchd configuration.
type Config struct {
	Source  DatasetConfig  `koanf:"source"`
	Target  DatasetConfig  `koanf:"target"`
	Store   StoreConfig    `koanf:"store"`
	Match   MatchConfig    `koanf:"match"`
	VSS     VSSConfig      `koanf:"vss"`
	Reports ReportsConfig  `koanf:"reports"`
	Logging logging.Config `koanf:"logging"`
}

// DatasetConfig describes one input dataset.
type DatasetConfig struct {
	// Name labels the dataset in reports (e.g. "DataDirect", "AliveData").
	Name string `koanf:"name"`
	// Path is the input file. Format is inferred from the extension
	// (.parquet or .csv) unless Format is set.
	Path   string `koanf:"path"`
	Format string `koanf:"format"`
	// Mapping binds input columns to canonical record fields.
	Mapping record.FieldMapping `koanf:"mapping"`
}

// StoreConfig holds analysis store configuration.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `koanf:"path"`
	// BatchSize is the ingest transaction size.
	BatchSize int `koanf:"batch_size"`
}

// MatchConfig holds match analysis configuration.
type MatchConfig struct {
	// Fields are the direct match fields to analyze. Defaults to
	// full_name, email_std, email_hash, mobile, landline.
	Fields []string `koanf:"fields"`
	// ExtractJoinFields are the join fields for unique-record extraction.
	ExtractJoinFields []string `koanf:"extract_join_fields"`
	// ExtractOutput is the parquet file unique records are written to.
	ExtractOutput string `koanf:"extract_output"`
}

// VSSConfig holds vector-similarity name matching configuration.
type VSSConfig struct {
	Model               string  `koanf:"model"`
	MaxRecords          int     `koanf:"max_records"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	BatchSize           int     `koanf:"batch_size"`
	MaxResultsPerName   int     `koanf:"max_results_per_name"`
	EnablePreprocessing bool    `koanf:"enable_preprocessing"`
	DetailedAnalysis    bool    `koanf:"detailed_analysis"`
	// CacheDir caches downloaded ONNX model files.
	CacheDir string `koanf:"cache_dir"`
	// IndexPath persists the name embedding index between runs.
	IndexPath string `koanf:"index_path"`
}

// ReportsConfig holds report output configuration.
type ReportsConfig struct {
	Dir string `koanf:"dir"`
}

// NewDefault returns the default configuration.
func NewDefault() *Config {
	return &Config{
		Source: DatasetConfig{
			Name:    "DataDirect",
			Mapping: record.DataDirectMapping(),
		},
		Target: DatasetConfig{
			Name:    "AliveData",
			Mapping: record.AliveDataMapping(),
		},
		Store: StoreConfig{
			Path:      "data/processed/match_analysis.db",
			BatchSize: 10000,
		},
		Match: MatchConfig{
			Fields:            []string{"full_name", "email_std", "email_hash", "mobile", "landline"},
			ExtractJoinFields: []string{"full_name", "suburb", "postcode", "email_std"},
			ExtractOutput:     "data/processed/source_unique_records.parquet",
		},
		VSS: VSSConfig{
			Model:               "sentence-transformers/all-MiniLM-L6-v2",
			MaxRecords:          100000,
			SimilarityThreshold: 0.85,
			BatchSize:           5000,
			MaxResultsPerName:   10,
			EnablePreprocessing: true,
			DetailedAnalysis:    true,
		},
		Reports: ReportsConfig{Dir: "reports"},
		Logging: *logging.NewDefaultConfig(),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store path must be set")
	}
	if c.Store.BatchSize <= 0 {
		return fmt.Errorf("store batch size must be positive, got %d", c.Store.BatchSize)
	}
	if len(c.Match.Fields) == 0 {
		return errors.New("at least one match field is required")
	}
	if err := c.Source.Mapping.Validate(); err != nil {
		return fmt.Errorf("source mapping: %w", err)
	}
	if err := c.Target.Mapping.Validate(); err != nil {
		return fmt.Errorf("target mapping: %w", err)
	}
	if err := c.VSS.Validate(); err != nil {
		return fmt.Errorf("vss: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate validates the VSS configuration.
func (c *VSSConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %g", c.SimilarityThreshold)
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("max records must be positive, got %d", c.MaxRecords)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MaxResultsPerName <= 0 {
		return fmt.Errorf("max results per name must be positive, got %d", c.MaxResultsPerName)
	}
	return nil
}
