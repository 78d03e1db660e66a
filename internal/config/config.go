// Package config loads trendcli configuration from environment
// variables and an optional YAML file. Server and logging settings come
// from both sources (env wins); dataset pipeline definitions come from
// the YAML file, falling back to the built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Datasets []DatasetConfig `yaml:"datasets" envconfig:"-" validate:"min=1,dive"`
}

// ServerConfig contains HTTP server configuration for webreport.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/trendcli.log"`
}

// SourceConfig describes where a dataset's tabular input comes from.
type SourceConfig struct {
	Path      string `yaml:"path" validate:"required"`
	Format    string `yaml:"format" validate:"oneof=csv xlsx"`
	Sheet     string `yaml:"sheet"`     // xlsx only; empty means first sheet
	Delimiter string `yaml:"delimiter"` // csv only; empty means comma
}

// NormalizeConfig names the categorical fields subject to
// canonicalization and any dataset-specific bad values beyond the
// shared default set.
type NormalizeConfig struct {
	Fields    []string            `yaml:"fields"`
	BadValues []string            `yaml:"bad_values"`
	PerField  map[string][]string `yaml:"per_field"`
}

// RatioConfig defines a derived ratio feature.
type RatioConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Numerator   string `yaml:"numerator" validate:"required"`
	Denominator string `yaml:"denominator" validate:"required"`
}

// AggregationConfig defines one grouped aggregation over the
// feature-augmented records. An empty measure counts records.
type AggregationConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Keys       []string `yaml:"keys" validate:"min=1"`
	Measure    string   `yaml:"measure"`
	OrderKey   string   `yaml:"order_key"`
	Cumulative bool     `yaml:"cumulative"`
}

// TrendConfig defines the (x, y) pair for trend fitting. When
// Aggregation is set, points come from that aggregation's buckets (X
// names a key field, Y is "value" or "running"); otherwise points come
// straight from the records (X and Y name numeric fields or derived
// features).
type TrendConfig struct {
	Aggregation string `yaml:"aggregation"`
	X           string `yaml:"x" validate:"required"`
	Y           string `yaml:"y"`
}

// DatasetConfig defines one pipeline instance.
type DatasetConfig struct {
	Name         string              `yaml:"name" validate:"required"`
	Source       SourceConfig        `yaml:"source"`
	DateColumn   string              `yaml:"date_column" validate:"required"`
	DateLayout   string              `yaml:"date_layout"`
	Normalize    NormalizeConfig     `yaml:"normalize"`
	Ratios       []RatioConfig       `yaml:"ratios" validate:"dive"`
	Aggregations []AggregationConfig `yaml:"aggregations" validate:"min=1,dive"`
	Trend        TrendConfig         `yaml:"trend"`
}

// Dataset returns the dataset configuration with the given name.
func (c *Config) Dataset(name string) (DatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

// Load loads configuration from environment variables and, when
// configFile is non-empty and exists, a YAML file. Datasets default to
// the built-in incident and epidemic pipelines when the file defines
// none.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TREND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if len(cfg.Datasets) == 0 {
		cfg.Datasets = DefaultDatasets()
	}
	applyDatasetDefaults(cfg.Datasets)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays YAML file values onto cfg. File values replace
// env-loaded values only where the file sets them.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if fileCfg.Server.Port != 0 {
		cfg.Server = fileCfg.Server
	}
	if fileCfg.Logging.Level != "" {
		cfg.Logging = fileCfg.Logging
	}
	if len(fileCfg.Datasets) > 0 {
		cfg.Datasets = fileCfg.Datasets
	}
	return nil
}

// applyDatasetDefaults fills per-dataset zero values.
func applyDatasetDefaults(datasets []DatasetConfig) {
	for i := range datasets {
		ds := &datasets[i]
		if ds.Source.Format == "" {
			ds.Source.Format = "csv"
		}
		if ds.DateLayout == "" {
			ds.DateLayout = "2006-01-02"
		}
	}
}

// Validate checks the configuration for correctness, including
// cross-references from trend specs to aggregation names.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Datasets))
	for _, ds := range c.Datasets {
		if seen[ds.Name] {
			return fmt.Errorf("duplicate dataset name %q", ds.Name)
		}
		seen[ds.Name] = true

		if ds.Source.Delimiter != "" && utf8.RuneCountInString(ds.Source.Delimiter) != 1 {
			return fmt.Errorf("dataset %q: delimiter %q must be a single character", ds.Name, ds.Source.Delimiter)
		}

		aggs := make(map[string]bool, len(ds.Aggregations))
		for _, agg := range ds.Aggregations {
			if aggs[agg.Name] {
				return fmt.Errorf("dataset %q: duplicate aggregation name %q", ds.Name, agg.Name)
			}
			aggs[agg.Name] = true
			if agg.Cumulative && agg.OrderKey == "" {
				return fmt.Errorf("dataset %q: cumulative aggregation %q requires an order_key", ds.Name, agg.Name)
			}
		}

		if ds.Trend.X != "" && ds.Trend.Aggregation != "" && !aggs[ds.Trend.Aggregation] {
			return fmt.Errorf("dataset %q: trend references unknown aggregation %q", ds.Name, ds.Trend.Aggregation)
		}
	}
	return nil
}
