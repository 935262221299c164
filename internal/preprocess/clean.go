package preprocess

import (
	"context"
	"log/slog"
	"strings"

	"agriprep/internal/dataset"
	"agriprep/internal/policy"
)

// Cleaner repairs missing values and removes duplicate rows. Both
// operations are best-effort: the input table is never mutated, problems
// are recorded as report issues rather than errors, and a column the
// cleaner cannot repair is left exactly as it stood.
type Cleaner struct {
	logger   *slog.Logger
	policies policy.Set
}

// NewCleaner creates a cleaner applying the given policy set
func NewCleaner(logger *slog.Logger, policies policy.Set) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:   logger,
		policies: policies,
	}
}

// HandleMissingValues repairs missing cells per the policy set: the given
// columns, or every column when none are named, visited in table order.
// Numeric columns accept mean, median, mode and drop strategies; text and
// time columns accept mode and drop. An invalid strategy falls back to
// mean (numeric) or mode (other) with a recorded issue. A drop on an
// earlier column removes rows before later columns are examined.
func (c *Cleaner) HandleMissingValues(ctx context.Context, t *dataset.Table, columns ...string) (*dataset.Table, *Report) {
	out := t.Clone()
	report := newReport(StageMissingValues)

	targets := columns
	if len(targets) == 0 {
		targets = out.Names()
	}

	for _, name := range targets {
		col, ok := out.Column(name)
		if !ok {
			report.add(name, "column not found")
			c.logger.WarnContext(ctx, "column not found; skipped",
				slog.String("stage", StageMissingValues),
				slog.String("column", name))
			continue
		}
		if col.MissingCount() == 0 {
			continue
		}

		strategy := c.resolveStrategy(ctx, report, col)

		if strategy == policy.Drop {
			keep := make([]bool, out.NumRows())
			dropped := 0
			for i := range keep {
				keep[i] = !col.IsMissing(i)
				if !keep[i] {
					dropped++
				}
			}
			if err := out.FilterRows(keep); err != nil {
				report.add(name, "failed to drop rows: "+err.Error())
				continue
			}
			c.logger.InfoContext(ctx, "dropped rows with missing values",
				slog.String("column", name),
				slog.Int("rows", dropped))
			continue
		}

		c.fill(ctx, report, col, strategy)
	}

	return out, report
}

// resolveStrategy picks the effective strategy for a column, substituting
// the type default when the configured one does not apply.
func (c *Cleaner) resolveStrategy(ctx context.Context, report *Report, col *dataset.Column) policy.Strategy {
	strategy := c.policies.StrategyFor(col.Name())

	if col.Kind() == dataset.Numeric {
		switch strategy {
		case policy.Mean, policy.Median, policy.Mode, policy.Drop:
			return strategy
		}
		report.add(col.Name(), "unknown strategy "+string(strategy)+"; mean used")
		c.logger.WarnContext(ctx, "unknown strategy for numeric column; mean used",
			slog.String("column", col.Name()),
			slog.String("strategy", string(strategy)))
		return policy.Mean
	}

	switch strategy {
	case policy.Mode, policy.Drop:
		return strategy
	}
	report.add(col.Name(), "strategy "+string(strategy)+" not applicable to non-numeric column; mode used")
	c.logger.WarnContext(ctx, "strategy not applicable to non-numeric column; mode used",
		slog.String("column", col.Name()),
		slog.String("strategy", string(strategy)))
	return policy.Mode
}

// fill replaces a column's missing cells with the strategy's statistic
func (c *Cleaner) fill(ctx context.Context, report *Report, col *dataset.Column, strategy policy.Strategy) {
	filled := 0

	switch col.Kind() {
	case dataset.Numeric:
		var value float64
		var ok bool
		switch strategy {
		case policy.Mean:
			value, ok = col.Mean()
		case policy.Median:
			value, ok = col.Median()
		case policy.Mode:
			value, ok = col.ModeFloat()
		}
		if !ok {
			c.reportUnusable(ctx, report, col)
			return
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				col.SetFloat(i, value)
				filled++
			}
		}

	case dataset.Text:
		value, ok := col.ModeString()
		if !ok {
			c.reportUnusable(ctx, report, col)
			return
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				col.SetString(i, value)
				filled++
			}
		}

	case dataset.Time:
		value, ok := col.ModeTime()
		if !ok {
			c.reportUnusable(ctx, report, col)
			return
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				col.SetTime(i, value)
				filled++
			}
		}
	}

	c.logger.InfoContext(ctx, "filled missing values",
		slog.String("column", col.Name()),
		slog.String("strategy", string(strategy)),
		slog.Int("cells", filled))
}

func (c *Cleaner) reportUnusable(ctx context.Context, report *Report, col *dataset.Column) {
	report.add(col.Name(), "no usable values; column unchanged")
	c.logger.WarnContext(ctx, "column has no usable values; left unchanged",
		slog.String("stage", StageMissingValues),
		slog.String("column", col.Name()))
}

// RemoveDuplicates removes rows that exactly duplicate an earlier row
// across every column, keeping the first occurrence. Surviving rows keep
// their relative order and a second pass is a no-op.
func (c *Cleaner) RemoveDuplicates(ctx context.Context, t *dataset.Table) (*dataset.Table, *Report) {
	out := t.Clone()
	report := newReport(StageDuplicates)

	rows := out.NumRows()
	if rows == 0 {
		return out, report
	}

	seen := make(map[string]bool, rows)
	keep := make([]bool, rows)
	removed := 0
	for i := 0; i < rows; i++ {
		key := rowKey(out, i)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		keep[i] = true
	}

	if removed > 0 {
		if err := out.FilterRows(keep); err != nil {
			report.add("", "failed to remove duplicate rows: "+err.Error())
			return out, report
		}
	}

	c.logger.InfoContext(ctx, "removed duplicate rows",
		slog.Int("rows", removed),
		slog.Int("remaining", out.NumRows()))

	return out, report
}

// rowKey renders a row for duplicate detection. Missing cells use a
// marker no real cell can produce, so a missing cell never equals the
// empty string.
func rowKey(t *dataset.Table, row int) string {
	var b strings.Builder
	for j := 0; j < t.NumCols(); j++ {
		col := t.At(j)
		if col.IsMissing(row) {
			b.WriteByte(0x00)
		} else {
			b.WriteString(col.CellString(row))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
