package dataset

import (
	"math"
	"strconv"
	"time"

	"agriprep/internal/errors"
)

// Kind identifies the value type a column holds
type Kind string

const (
	Text    Kind = "text"
	Numeric Kind = "numeric"
	Time    Kind = "time"
)

// Column is a single named column of homogeneous values with a validity
// mask. Exactly one backing slice is active for a column's Kind; the
// missing mask is authoritative for cell validity. Numeric cells that are
// missing also hold NaN so that arithmetic on raw values cannot silently
// absorb them.
type Column struct {
	name    string
	kind    Kind
	floats  []float64
	strings []string
	times   []time.Time
	missing []bool
}

// NewNumericColumn creates a numeric column. If missing is nil the mask is
// derived from NaN values; otherwise missing must match the value length
// and masked cells are stored as NaN regardless of the supplied value.
func NewNumericColumn(name string, values []float64, missing []bool) (*Column, error) {
	if missing != nil && len(missing) != len(values) {
		return nil, errors.NewValidationError("missing mask length does not match values").
			WithContext("column", name)
	}
	c := &Column{
		name:    name,
		kind:    Numeric,
		floats:  make([]float64, len(values)),
		missing: make([]bool, len(values)),
	}
	for i, v := range values {
		miss := math.IsNaN(v)
		if missing != nil && missing[i] {
			miss = true
		}
		if miss {
			c.floats[i] = math.NaN()
			c.missing[i] = true
		} else {
			c.floats[i] = v
		}
	}
	return c, nil
}

// NewTextColumn creates a text column. A nil missing mask means every cell
// is present.
func NewTextColumn(name string, values []string, missing []bool) (*Column, error) {
	if missing != nil && len(missing) != len(values) {
		return nil, errors.NewValidationError("missing mask length does not match values").
			WithContext("column", name)
	}
	c := &Column{
		name:    name,
		kind:    Text,
		strings: make([]string, len(values)),
		missing: make([]bool, len(values)),
	}
	copy(c.strings, values)
	for i := range c.missing {
		if missing != nil && missing[i] {
			c.strings[i] = ""
			c.missing[i] = true
		}
	}
	return c, nil
}

// NewTimeColumn creates a time column. A nil missing mask means every cell
// is present.
func NewTimeColumn(name string, values []time.Time, missing []bool) (*Column, error) {
	if missing != nil && len(missing) != len(values) {
		return nil, errors.NewValidationError("missing mask length does not match values").
			WithContext("column", name)
	}
	c := &Column{
		name:    name,
		kind:    Time,
		times:   make([]time.Time, len(values)),
		missing: make([]bool, len(values)),
	}
	copy(c.times, values)
	for i := range c.missing {
		if missing != nil && missing[i] {
			c.times[i] = time.Time{}
			c.missing[i] = true
		}
	}
	return c, nil
}

// Name returns the column name
func (c *Column) Name() string {
	return c.name
}

// Kind returns the column's value kind
func (c *Column) Kind() Kind {
	return c.kind
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.missing)
}

// IsMissing reports whether cell i is missing
func (c *Column) IsMissing(i int) bool {
	return c.missing[i]
}

// SetMissing marks cell i missing and clears its value
func (c *Column) SetMissing(i int) {
	c.missing[i] = true
	switch c.kind {
	case Numeric:
		c.floats[i] = math.NaN()
	case Text:
		c.strings[i] = ""
	case Time:
		c.times[i] = time.Time{}
	}
}

// Float returns the numeric value of cell i (NaN when missing)
func (c *Column) Float(i int) float64 {
	return c.floats[i]
}

// SetFloat sets cell i on a numeric column. NaN marks the cell missing.
func (c *Column) SetFloat(i int, v float64) {
	if math.IsNaN(v) {
		c.SetMissing(i)
		return
	}
	c.floats[i] = v
	c.missing[i] = false
}

// String returns the text value of cell i (empty when missing)
func (c *Column) String(i int) string {
	return c.strings[i]
}

// SetString sets cell i on a text column and clears its missing flag
func (c *Column) SetString(i int, v string) {
	c.strings[i] = v
	c.missing[i] = false
}

// Time returns the time value of cell i (zero when missing)
func (c *Column) Time(i int) time.Time {
	return c.times[i]
}

// SetTime sets cell i on a time column and clears its missing flag
func (c *Column) SetTime(i int, v time.Time) {
	c.times[i] = v
	c.missing[i] = false
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	count := 0
	for _, m := range c.missing {
		if m {
			count++
		}
	}
	return count
}

// CellString renders cell i in its canonical text form: shortest exact
// decimal for numbers, date or datetime for times, the raw string for
// text, and the empty string for missing cells.
func (c *Column) CellString(i int) string {
	if c.missing[i] {
		return ""
	}
	switch c.kind {
	case Numeric:
		return strconv.FormatFloat(c.floats[i], 'f', -1, 64)
	case Time:
		t := c.times[i]
		h, m, s := t.Clock()
		if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return c.strings[i]
	}
}

// clone returns a deep copy sharing no backing memory
func (c *Column) clone() *Column {
	out := &Column{
		name:    c.name,
		kind:    c.kind,
		missing: make([]bool, len(c.missing)),
	}
	copy(out.missing, c.missing)
	if c.floats != nil {
		out.floats = make([]float64, len(c.floats))
		copy(out.floats, c.floats)
	}
	if c.strings != nil {
		out.strings = make([]string, len(c.strings))
		copy(out.strings, c.strings)
	}
	if c.times != nil {
		out.times = make([]time.Time, len(c.times))
		copy(out.times, c.times)
	}
	return out
}

// filter compacts the column to the rows where keep is true
func (c *Column) filter(keep []bool) {
	n := 0
	for i, k := range keep {
		if !k {
			continue
		}
		c.missing[n] = c.missing[i]
		if c.floats != nil {
			c.floats[n] = c.floats[i]
		}
		if c.strings != nil {
			c.strings[n] = c.strings[i]
		}
		if c.times != nil {
			c.times[n] = c.times[i]
		}
		n++
	}
	c.missing = c.missing[:n]
	if c.floats != nil {
		c.floats = c.floats[:n]
	}
	if c.strings != nil {
		c.strings = c.strings[:n]
	}
	if c.times != nil {
		c.times = c.times[:n]
	}
}
