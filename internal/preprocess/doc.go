// Package preprocess implements the data preparation stages applied to
// each input file.
//
// This package contains four main components:
//
// Loader: Reads CSV files and single Excel worksheets into typed tables,
// coercing declared numeric and date columns cell by cell. Only failures
// that abort a whole file (unreadable file, missing sheet, no header)
// surface as errors; an unparseable cell simply becomes a missing value.
//
// Cleaner: Repairs missing values per the configured policy set and
// removes exact duplicate rows. Cleaning never fails: every deviation is
// recorded as a report issue and the affected column is left as it stood.
//
// Transformer: Bounds outliers (IQR fences or fixed clip ranges),
// rescales numeric features (min-max or z-score) and expands categorical
// columns into capped-vocabulary indicator columns, under the same
// report-not-error contract.
//
// SplitTrainTest: Deterministically partitions a table's rows into train
// and test tables with a seeded shuffle.
//
// Stages take and return tables by value semantics: the input table is
// cloned up front and never mutated.
package preprocess
