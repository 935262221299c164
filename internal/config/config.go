package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"agriprep/internal/errors"
	"agriprep/internal/policy"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Features FeaturesConfig `yaml:"features" envconfig:"FEATURES"`

	// Policy is a structured map and only configurable through the
	// config file, not environment variables.
	Policy policy.Set `yaml:"policy" ignored:"true"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"required,oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"required,oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"required,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// CleaningConfig contains missing-value handling configuration
type CleaningConfig struct {
	DefaultStrategy string `yaml:"default_strategy" envconfig:"DEFAULT_STRATEGY" validate:"required,oneof=mean median mode drop"`
}

// FeaturesConfig contains feature engineering configuration.
// ExcludeColumns keeps identifier columns out of outlier bounding and
// normalization so they survive with their raw values; clearing the list
// (exclude_columns: []) re-enables any policy rules those columns carry.
// Empty NumericColumns means the loader's default measurement columns.
type FeaturesConfig struct {
	Normalization  string   `yaml:"normalization" envconfig:"NORMALIZATION" validate:"required,oneof=minmax zscore"`
	MaxCategories  int      `yaml:"max_categories" envconfig:"MAX_CATEGORIES" validate:"gte=2"`
	KeepOriginal   bool     `yaml:"keep_original" envconfig:"KEEP_ORIGINAL"`
	ExcludeColumns []string `yaml:"exclude_columns" envconfig:"EXCLUDE_COLUMNS"`
	NumericColumns []string `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS"`
	DateColumns    []string `yaml:"date_columns" envconfig:"DATE_COLUMNS"`
}

// Load loads configuration from the given YAML file and environment
// variables, environment winning over the file. An empty path searches
// the default locations; running without any config file yields the
// defaults. A policy section in the file replaces the default policy
// table wholesale.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("AGRIPREP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills fields the file and environment left unset
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Paths.RawDir == "" {
		c.Paths.RawDir = defaults.Paths.RawDir
	}
	if c.Paths.ProcessedDir == "" {
		c.Paths.ProcessedDir = defaults.Paths.ProcessedDir
	}
	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = defaults.Paths.LogsDir
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaults.Logging.Output
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = defaults.Logging.FilePath
	}

	if c.Cleaning.DefaultStrategy == "" {
		c.Cleaning.DefaultStrategy = defaults.Cleaning.DefaultStrategy
	}

	if c.Features.Normalization == "" {
		c.Features.Normalization = defaults.Features.Normalization
	}
	if c.Features.MaxCategories == 0 {
		c.Features.MaxCategories = defaults.Features.MaxCategories
	}
	if c.Features.ExcludeColumns == nil {
		c.Features.ExcludeColumns = defaults.Features.ExcludeColumns
	}

	// An absent policy section means the built-in table; a file that
	// wants no per-column rules can say so with an explicit default.
	// Either way an unset policy default inherits the cleaning strategy.
	if c.Policy.Default == "" && c.Policy.UnlistedNumeric == "" && len(c.Policy.Columns) == 0 {
		c.Policy.Columns = defaults.Policy.Columns
		c.Policy.UnlistedNumeric = defaults.Policy.UnlistedNumeric
	}
	if c.Policy.Default == "" {
		c.Policy.Default = policy.Strategy(c.Cleaning.DefaultStrategy)
	}
}

// Validate validates the configuration, including the policy table
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.NewConfigError("invalid configuration", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, formatFieldError(fieldErr))
		}
		return errors.NewConfigError("invalid configuration: "+strings.Join(messages, "; "), nil)
	}

	return c.Policy.Validate()
}

// formatFieldError formats a validator error message
func formatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Replace(err.Param(), " ", ", ", -1))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag())
	}
}

// findConfigFile returns the first config file found in the common
// locations, or empty when none exists.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns the full working default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RawDir:       "data/raw",
			ProcessedDir: "data/processed",
			LogsDir:      "logs",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/agriprep.log",
		},
		Cleaning: CleaningConfig{
			DefaultStrategy: "mean",
		},
		Features: FeaturesConfig{
			Normalization: "minmax",
			MaxCategories: 10,
			KeepOriginal:  false,
			ExcludeColumns: []string{
				"Year",
				"Year Code",
				"Area Code",
				"Element Code",
				"Item Code",
			},
		},
		Policy: policy.AgriClimate(),
	}
}
