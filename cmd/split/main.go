package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"agriprep/internal/config"
	"agriprep/internal/exporter"
	"agriprep/internal/infrastructure"
	"agriprep/internal/preprocess"
)

func main() {
	os.Exit(run())
}

func run() int {
	file := flag.String("file", "", "data file to split (required)")
	testSize := flag.Float64("test-size", 0.2, "fraction of rows held out for the test set")
	seed := flag.Int64("seed", 42, "random seed for the shuffle")
	outDir := flag.String("out", "", "output directory (defaults to the configured processed dir)")
	configPath := flag.String("config", "", "path to config.yaml (defaults to config.yaml, then configs/config.yaml)")
	flag.Parse()

	if *file == "" {
		slog.Error("missing required -file flag")
		flag.Usage()
		return 2
	}

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

	numericColumns := cfg.Features.NumericColumns
	if len(numericColumns) == 0 {
		numericColumns = preprocess.DefaultNumericColumns()
	}
	loader := preprocess.NewLoader(logger, preprocess.LoadOptions{
		NumericColumns: numericColumns,
		DateColumns:    cfg.Features.DateColumns,
	})

	table, err := loader.Load(ctx, *file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load data file",
			slog.String("path", *file),
			slog.String("error", err.Error()))
		return 1
	}

	train, test, err := preprocess.SplitTrainTest(table, preprocess.SplitOptions{
		TestSize: *testSize,
		Seed:     *seed,
		Shuffle:  true,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to split data",
			slog.String("path", *file),
			slog.String("error", err.Error()))
		return 1
	}

	stem := strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	trainPath := filepath.Join(*outDir, stem+"_train.csv")
	testPath := filepath.Join(*outDir, stem+"_test.csv")

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WriteTable(ctx, trainPath, train); err != nil {
		logger.ErrorContext(ctx, "failed to write train set",
			slog.String("path", trainPath),
			slog.String("error", err.Error()))
		return 1
	}
	if err := writer.WriteTable(ctx, testPath, test); err != nil {
		logger.ErrorContext(ctx, "failed to write test set",
			slog.String("path", testPath),
			slog.String("error", err.Error()))
		return 1
	}

	logger.InfoContext(ctx, "split complete",
		slog.String("train", trainPath),
		slog.Int("train_rows", train.NumRows()),
		slog.String("test", testPath),
		slog.Int("test_rows", test.NumRows()))

	return 0
}
