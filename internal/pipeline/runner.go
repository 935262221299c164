package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"agriprep/internal/config"
	"agriprep/internal/dataset"
	"agriprep/internal/exporter"
	"agriprep/internal/preprocess"
)

// FileResult summarizes one file's trip through the pipeline. Err is set
// only when the file could not be loaded or written or the run was
// canceled; per-column stage diagnostics land in Issues and never abort
// the file.
type FileResult struct {
	Input   string
	Output  string
	RowsIn  int
	RowsOut int
	ColsIn  int
	ColsOut int
	Issues  []preprocess.Issue
	Err     error
}

// Runner drives the four-stage preprocessing pipeline over data files.
// One Runner serves a whole batch; files are processed one at a time.
type Runner struct {
	logger       *slog.Logger
	loader       *preprocess.Loader
	cleaner      *preprocess.Cleaner
	transformer  *preprocess.Transformer
	writer       *exporter.CSVWriter
	exclude      []string
	processedDir string
}

// NewRunner creates a runner from the application configuration.
// processedDir is the resolved directory that receives the
// processed_<name>.csv outputs.
func NewRunner(logger *slog.Logger, cfg *config.Config, processedDir string) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	numericColumns := cfg.Features.NumericColumns
	if len(numericColumns) == 0 {
		numericColumns = preprocess.DefaultNumericColumns()
	}

	return &Runner{
		logger: logger,
		loader: preprocess.NewLoader(logger, preprocess.LoadOptions{
			NumericColumns: numericColumns,
			DateColumns:    cfg.Features.DateColumns,
		}),
		cleaner: preprocess.NewCleaner(logger, cfg.Policy),
		transformer: preprocess.NewTransformer(logger, cfg.Policy, preprocess.TransformOptions{
			Normalization: cfg.Features.Normalization,
			MaxCategories: cfg.Features.MaxCategories,
			KeepOriginal:  cfg.Features.KeepOriginal,
		}),
		writer:       exporter.NewCSVWriter(logger),
		exclude:      cfg.Features.ExcludeColumns,
		processedDir: processedDir,
	}
}

// Run pushes one file through load, clean, transform and write. The
// stages themselves never fail a table; everything they flag accumulates
// in the result's Issues. Cancellation is honored between stages.
func (r *Runner) Run(ctx context.Context, path string) FileResult {
	result := FileResult{Input: path}

	if result.Err = runCanceled(ctx); result.Err != nil {
		return result
	}

	table, err := r.loader.Load(ctx, path)
	if err != nil {
		result.Err = err
		return result
	}

	initial := table.Summarize()
	result.RowsIn = initial.Rows
	result.ColsIn = initial.Cols
	r.logSummary(ctx, "initial data", initial)

	if result.Err = runCanceled(ctx); result.Err != nil {
		return result
	}

	var report *preprocess.Report
	table, report = r.cleaner.HandleMissingValues(ctx, table)
	result.Issues = append(result.Issues, report.Issues...)

	table, report = r.cleaner.RemoveDuplicates(ctx, table)
	result.Issues = append(result.Issues, report.Issues...)

	r.logSummary(ctx, "data cleaned", table.Summarize())

	if result.Err = runCanceled(ctx); result.Err != nil {
		return result
	}

	table, report = r.transformer.ProcessNumericColumns(ctx, table, r.exclude)
	result.Issues = append(result.Issues, report.Issues...)

	table, report = r.transformer.NormalizeFeatures(ctx, table, nil, r.exclude)
	result.Issues = append(result.Issues, report.Issues...)

	table, report = r.transformer.CreateDummyVariables(ctx, table, nil)
	result.Issues = append(result.Issues, report.Issues...)

	final := table.Summarize()
	r.logSummary(ctx, "data transformed", final)

	if result.Err = runCanceled(ctx); result.Err != nil {
		return result
	}

	output := filepath.Join(r.processedDir, exporter.ProcessedName(path))
	if err := r.writer.WriteTable(ctx, output, table); err != nil {
		result.Err = err
		return result
	}

	result.Output = output
	result.RowsOut = final.Rows
	result.ColsOut = final.Cols

	r.logger.InfoContext(ctx, "processed file saved",
		slog.String("path", output),
		slog.Int("rows", final.Rows),
		slog.Int("columns", final.Cols),
		slog.Int("issues", len(result.Issues)))

	return result
}

// RunBatch processes the given files in order, one at a time. A file
// whose load or write fails is logged and the batch moves on to the
// next file.
func (r *Runner) RunBatch(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for i, path := range paths {
		r.logger.InfoContext(ctx, "processing file",
			slog.Int("current", i+1),
			slog.Int("total", len(paths)),
			slog.String("path", path))

		result := r.Run(ctx, path)
		if result.Err != nil {
			r.logger.ErrorContext(ctx, "file failed",
				slog.String("path", path),
				slog.String("error", result.Err.Error()))
		}
		results = append(results, result)
	}
	return results
}

// logSummary logs the table shape plus the missing-cell count of every
// column that still has gaps, in name order.
func (r *Runner) logSummary(ctx context.Context, message string, s dataset.Summary) {
	names := make([]string, 0, len(s.Missing))
	for name := range s.Missing {
		if s.Missing[name] > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	missing := make([]any, 0, len(names))
	for _, name := range names {
		missing = append(missing, slog.Int(name, s.Missing[name]))
	}

	r.logger.InfoContext(ctx, message,
		slog.Int("rows", s.Rows),
		slog.Int("columns", s.Cols),
		slog.Group("missing", missing...))
}

func runCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("processing canceled: %w", err)
	}
	return nil
}
