package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"agriprep/internal/config"
	"agriprep/internal/files"
	"agriprep/internal/infrastructure"
	"agriprep/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	inDir := flag.String("in", "", "input directory for raw data files (defaults to the configured raw dir)")
	outDir := flag.String("out", "", "output directory for processed CSV files (defaults to the configured processed dir)")
	configPath := flag.String("config", "", "path to config.yaml (defaults to config.yaml, then configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		return 1
	}

	if *inDir == "" {
		*inDir = paths.RawDir
	}
	if *outDir == "" {
		*outDir = paths.ProcessedDir
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("failed to create required directories", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.LogsDir)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.GenerateRunID())

	logger.InfoContext(ctx, "starting data preprocessing",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir))

	discovery := files.NewDiscovery(".")
	dataFiles, err := discovery.FindDataFiles(*inDir)
	if err != nil {
		logger.ErrorContext(ctx, "failed to discover data files",
			slog.String("input_dir", *inDir),
			slog.String("error", err.Error()))
		return 1
	}

	logger.InfoContext(ctx, "data files discovered", slog.Int("count", len(dataFiles)))
	if len(dataFiles) == 0 {
		logger.WarnContext(ctx, "no data files found",
			slog.String("input_dir", *inDir),
			slog.String("pattern", "*.csv, *.xlsx, *.xls"))
		return 0
	}

	filePaths := make([]string, 0, len(dataFiles))
	for _, f := range dataFiles {
		filePaths = append(filePaths, f.Path)
	}

	runner := pipeline.NewRunner(logger, cfg, *outDir)
	results := runner.RunBatch(ctx, filePaths)

	processed, failed, issues := 0, 0, 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			continue
		}
		processed++
		issues += len(result.Issues)
	}

	logger.InfoContext(ctx, "preprocessing complete",
		slog.Int("files_processed", processed),
		slog.Int("files_failed", failed),
		slog.Int("total_issues", issues))

	// Partial failures are survivable; a batch where nothing succeeded is not.
	if processed == 0 && failed > 0 {
		return 1
	}
	return 0
}
