package preprocess

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"agriprep/internal/dataset"
	"agriprep/internal/errors"
)

// missingMarkers are the cell values recognized as missing in every
// column, before any type coercion.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"#N/A": true,
}

// dateLayouts are tried in order when parsing declared date columns
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
	"2006.01.02",
}

// LoadOptions declares how raw cells map onto typed columns. Columns
// named in NumericColumns or DateColumns are coerced cell by cell when
// present in the header; a cell that fails coercion becomes missing
// rather than failing the file. Sheet selects the Excel worksheet, with
// the workbook's first sheet as the default.
type LoadOptions struct {
	NumericColumns []string
	DateColumns    []string
	Sheet          string
}

// Loader reads CSV and Excel files into tables
type Loader struct {
	logger  *slog.Logger
	sheet   string
	numeric map[string]bool
	dates   map[string]bool
}

// NewLoader creates a loader with the given coercion options
func NewLoader(logger *slog.Logger, options LoadOptions) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	numeric := make(map[string]bool, len(options.NumericColumns))
	for _, name := range options.NumericColumns {
		numeric[name] = true
	}
	dates := make(map[string]bool, len(options.DateColumns))
	for _, name := range options.DateColumns {
		dates[name] = true
	}

	return &Loader{
		logger:  logger,
		sheet:   options.Sheet,
		numeric: numeric,
		dates:   dates,
	}
}

// DefaultNumericColumns returns the measurement columns of the
// climate-impact agriculture dataset.
func DefaultNumericColumns() []string {
	return []string{
		"Year",
		"Average_Temperature_C",
		"Total_Precipitation_mm",
		"CO2_Emissions_MT",
		"Crop_Yield_MT_per_HA",
		"Extreme_Weather_Events",
		"Irrigation_Access_%",
		"Pesticide_Use_KG_per_HA",
		"Fertilizer_Use_KG_per_HA",
		"Soil_Health_Index",
		"Economic_Impact_Million_USD",
	}
}

// Load reads a data file, dispatching on the file extension. Failures
// that abort the whole file surface as parsing errors wrapping their
// cause; individual unparseable cells become missing values instead.
func (l *Loader) Load(ctx context.Context, path string) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(ctx, path)
	case ".xlsx", ".xls":
		return l.LoadExcel(ctx, path)
	default:
		return nil, errors.NewParsingError("unsupported file type", nil).
			WithContext("path", path)
	}
}

// LoadCSV reads a CSV file into a table
func (l *Loader) LoadCSV(ctx context.Context, path string) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV", err).
			WithContext("path", path)
	}

	return l.fromRows(ctx, path, rows)
}

// LoadExcel reads a single worksheet of an Excel workbook into a table
func (l *Loader) LoadExcel(ctx context.Context, path string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", nil).
				WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}

	return l.fromRows(ctx, path, rows)
}

// fromRows assembles a typed table from raw rows. The first row is the
// header; short data rows are padded with missing cells and cells beyond
// the header width are dropped.
func (l *Loader) fromRows(ctx context.Context, path string, rows [][]string) (*dataset.Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NewParsingError("file contains no header row", nil).
			WithContext("path", path)
	}

	header := normalizeHeader(rows[0])
	dataRows := rows[1:]

	// Column-major raw cells with sentinel-derived missing masks
	raw := make([][]string, len(header))
	missing := make([][]bool, len(header))
	for j := range header {
		raw[j] = make([]string, len(dataRows))
		missing[j] = make([]bool, len(dataRows))
	}

	for i, row := range dataRows {
		if len(row) > len(header) {
			l.logger.WarnContext(ctx, "row wider than header; extra cells dropped",
				slog.String("file", filepath.Base(path)),
				slog.Int("row", i+2),
				slog.Int("extra_cells", len(row)-len(header)))
		}
		for j := range header {
			var cell string
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if missingMarkers[cell] {
				missing[j][i] = true
				continue
			}
			raw[j][i] = cell
		}
	}

	table := dataset.NewTable()
	for j, name := range header {
		col, err := l.buildColumn(ctx, path, name, raw[j], missing[j])
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(col); err != nil {
			return nil, errors.NewParsingError("failed to assemble table", err).
				WithContext("path", path)
		}
	}

	l.logger.InfoContext(ctx, "loaded data file",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))

	return table, nil
}

// buildColumn coerces one column's raw cells into its declared type
func (l *Loader) buildColumn(ctx context.Context, path, name string, raw []string, missing []bool) (*dataset.Column, error) {
	switch {
	case l.numeric[name]:
		values := make([]float64, len(raw))
		badCells := 0
		for i, cell := range raw {
			if missing[i] {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				missing[i] = true
				badCells++
				continue
			}
			values[i] = v
		}
		if badCells > 0 {
			l.logger.WarnContext(ctx, "unparseable numeric cells became missing",
				slog.String("file", filepath.Base(path)),
				slog.String("column", name),
				slog.Int("cells", badCells))
		}
		return dataset.NewNumericColumn(name, values, missing)

	case l.dates[name]:
		values := make([]time.Time, len(raw))
		badCells := 0
		for i, cell := range raw {
			if missing[i] {
				continue
			}
			t, ok := parseDate(cell)
			if !ok {
				missing[i] = true
				badCells++
				continue
			}
			values[i] = t
		}
		if badCells > 0 {
			l.logger.WarnContext(ctx, "unparseable date cells became missing",
				slog.String("file", filepath.Base(path)),
				slog.String("column", name),
				slog.Int("cells", badCells))
		}
		return dataset.NewTimeColumn(name, values, missing)

	default:
		return dataset.NewTextColumn(name, raw, missing)
	}
}

// normalizeHeader trims header cells, strips a UTF-8 BOM from the first
// cell and disambiguates duplicate or empty names.
func normalizeHeader(cells []string) []string {
	header := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for j, cell := range cells {
		if j == 0 {
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		if count, dup := seen[name]; dup {
			seen[name] = count + 1
			name = fmt.Sprintf("%s.%d", name, count)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = 1
		}
		header[j] = name
	}
	return header
}

// parseDate tries the supported date layouts in order
func parseDate(cell string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
