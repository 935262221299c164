// Package pipeline orchestrates the preprocessing stages per data file.
//
// A Runner wires the loader, cleaner, feature transformer and CSV writer
// together and pushes each file through them in a fixed order: load,
// handle missing values, remove duplicates, bound outliers, normalize,
// expand categoricals, write. Stage diagnostics are collected into a
// FileResult rather than raised; only a failed load or write sets the
// result's Err. RunBatch applies that contract across a file list,
// continuing past individual failures so one malformed file cannot sink
// a batch.
package pipeline
