// Package config provides centralized configuration management for the
// agriprep pipeline. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AGRIPREP_* for namespacing:
//
//	AGRIPREP_PATHS_RAW_DIR=data/raw
//	AGRIPREP_LOGGING_LEVEL=debug
//	AGRIPREP_FEATURES_NORMALIZATION=zscore
//	AGRIPREP_FEATURES_EXCLUDE_COLUMNS="Year,Area Code"
//	AGRIPREP_CLEANING_DEFAULT_STRATEGY=median
//
// The policy table is structured data and only configurable through the
// config file's policy: section.
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves the configured directories to absolute paths:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	inputPath := paths.RawFilePath("climate.csv")
//	outputPath := paths.ProcessedFilePath("processed_climate.csv")
//
// # Validation
//
// All configuration is validated at load time: enum fields must be
// members of their sets, and the policy table's strategies, treatments
// and clip bounds are checked before any file is touched.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
