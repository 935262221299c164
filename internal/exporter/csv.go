package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"agriprep/internal/dataset"
	"agriprep/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. Failures
// surface as storage errors wrapping their cause.
func (w *CSVWriter) WriteCSV(ctx context.Context, filePath string, options WriteOptions) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err).
			WithContext("path", filePath)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return errors.NewStorageError("failed to open file", err).
			WithContext("path", filePath)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewStorageError("failed to write BOM", err).
				WithContext("path", filePath)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return errors.NewStorageError("failed to write headers", err).
				WithContext("path", filePath)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).
				WithContext("path", filePath)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV", err).
			WithContext("path", filePath)
	}

	w.logger.InfoContext(ctx, "wrote CSV file",
		slog.String("path", filePath),
		slog.Int("records", len(options.Records)))

	return nil
}

// WriteTable writes a processed table to filePath. The header row lists
// the column names in table order and cells render in their canonical
// text form: shortest exact decimal for numbers, 2006-01-02 for dates,
// empty for missing. The file starts with a UTF-8 BOM so spreadsheet
// tools open it cleanly.
func (w *CSVWriter) WriteTable(ctx context.Context, filePath string, t *dataset.Table) error {
	records := make([][]string, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		records = append(records, t.Row(i))
	}

	return w.WriteCSV(ctx, filePath, WriteOptions{
		Headers:   t.Names(),
		Records:   records,
		Append:    false,
		BOMPrefix: true,
	})
}

// ProcessedName returns the output file name for an input file:
// processed_<stem>.csv. The extension is always .csv regardless of the
// input format.
func ProcessedName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return "processed_" + stem + ".csv"
}
