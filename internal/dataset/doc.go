// Package dataset provides the in-memory table model shared by every
// pipeline stage.
//
// This package contains two main components:
//
// Table: An ordered collection of equally sized, uniquely named columns.
// Column order is preserved through cloning, row filtering and column
// drops, and drives CSV output.
//
// Column: A single typed column (numeric, text or time) with a validity
// mask. The mask is authoritative for missing cells; missing numeric
// cells also hold NaN. Descriptive statistics (mean, median, mode,
// min/max, percentiles with linear interpolation, standard deviation)
// operate on the non-missing values only and never panic on empty
// columns.
//
// Example usage:
//
//	col, _ := dataset.NewNumericColumn("yield", []float64{1.2, math.NaN(), 3.4}, nil)
//	table := dataset.NewTable()
//	_ = table.AddColumn(col)
//
//	median, ok := col.Median()
//	summary := table.Summarize()
package dataset
