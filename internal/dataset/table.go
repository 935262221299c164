package dataset

import (
	"agriprep/internal/errors"
)

// Table is an ordered collection of equally sized columns with unique
// names. Column order is preserved through every operation and drives
// iteration and CSV output.
type Table struct {
	columns []*Column
	index   map[string]int
}

// Summary describes a table's shape and per-column missing counts
type Summary struct {
	Rows    int
	Cols    int
	Missing map[string]int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{
		index: make(map[string]int),
	}
}

// AddColumn appends a column. The name must be unique and the length must
// match the table's existing columns.
func (t *Table) AddColumn(c *Column) error {
	if _, exists := t.index[c.name]; exists {
		return errors.NewValidationError("duplicate column name").
			WithContext("column", c.name)
	}
	if len(t.columns) > 0 && c.Len() != t.NumRows() {
		return errors.NewValidationError("column length does not match table").
			WithContext("column", c.name).
			WithContext("column_rows", c.Len()).
			WithContext("table_rows", t.NumRows())
	}
	t.index[c.name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// At returns the column at position i
func (t *Table) At(i int) *Column {
	return t.columns[i]
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Row renders row i as canonical cell strings in column order
func (t *Table) Row(i int) []string {
	cells := make([]string, len(t.columns))
	for j, c := range t.columns {
		cells[j] = c.CellString(i)
	}
	return cells
}

// Clone returns a deep copy sharing no backing memory with the source
func (t *Table) Clone() *Table {
	out := NewTable()
	for _, c := range t.columns {
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// FilterRows removes the rows where keep is false. The mask must have
// exactly NumRows entries.
func (t *Table) FilterRows(keep []bool) error {
	if len(keep) != t.NumRows() {
		return errors.NewValidationError("row mask length does not match table").
			WithContext("mask_rows", len(keep)).
			WithContext("table_rows", t.NumRows())
	}
	for _, c := range t.columns {
		c.filter(keep)
	}
	return nil
}

// DropColumn removes the named column, reporting whether it existed
func (t *Table) DropColumn(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.columns); j++ {
		t.index[t.columns[j].name] = j
	}
	return true
}

// Summarize reports the table shape and per-column missing counts
func (t *Table) Summarize() Summary {
	s := Summary{
		Rows:    t.NumRows(),
		Cols:    t.NumCols(),
		Missing: make(map[string]int, len(t.columns)),
	}
	for _, c := range t.columns {
		s.Missing[c.name] = c.MissingCount()
	}
	return s
}
