// Package exporter writes processed tables to CSV files.
//
// CSVWriter renders a dataset.Table with the column names as the header
// row and each cell in its canonical text form: shortest exact decimal
// for numbers, 2006-01-02 for dates, and empty for missing cells.
// Output files start with a UTF-8 BOM so Excel opens them as UTF-8.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(logger)
//
//	out := filepath.Join(processedDir, exporter.ProcessedName(inputPath))
//	if err := writer.WriteTable(ctx, out, table); err != nil {
//	    // storage error wrapping the cause
//	}
package exporter
