package preprocess

import (
	"context"
	"log/slog"
	"sort"

	"agriprep/internal/dataset"
	"agriprep/internal/policy"
)

// Normalization methods
const (
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"
)

// TransformOptions configures the feature transformer. Zero values fall
// back to min-max normalization and a ten-category cap.
type TransformOptions struct {
	Normalization string
	MaxCategories int
	KeepOriginal  bool
}

// Transformer bounds outliers, rescales numeric features and expands
// categorical columns into indicator columns. Like the cleaner it never
// fails a table: problem columns are left unchanged and recorded as
// report issues.
type Transformer struct {
	logger        *slog.Logger
	policies      policy.Set
	normalization string
	maxCategories int
	keepOriginal  bool
}

// NewTransformer creates a transformer with the given policy set and
// options.
func NewTransformer(logger *slog.Logger, policies policy.Set, options TransformOptions) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Normalization == "" {
		options.Normalization = NormalizeMinMax
	}
	if options.MaxCategories == 0 {
		options.MaxCategories = 10
	}

	return &Transformer{
		logger:        logger,
		policies:      policies,
		normalization: options.Normalization,
		maxCategories: options.MaxCategories,
		keepOriginal:  options.KeepOriginal,
	}
}

// ProcessNumericColumns bounds outliers in every numeric column that has
// a registered treatment, skipping excluded names. IQR treatment clamps
// into [Q1-1.5*IQR, Q3+1.5*IQR]; clip treatment clamps into the rule's
// fixed range. Columns without a treatment are untouched unless the
// policy extends IQR to unlisted numeric columns.
func (tr *Transformer) ProcessNumericColumns(ctx context.Context, t *dataset.Table, exclude []string) (*dataset.Table, *Report) {
	out := t.Clone()
	report := newReport(StageOutliers)
	excluded := toSet(exclude)

	for _, name := range out.Names() {
		if excluded[name] {
			continue
		}
		col, _ := out.Column(name)
		if col.Kind() != dataset.Numeric {
			continue
		}
		treatment, rule := tr.policies.TreatmentFor(name)
		if treatment == policy.None {
			continue
		}
		if len(col.Values()) < 2 {
			report.add(name, "fewer than two usable values; outlier bounds skipped")
			tr.logger.WarnContext(ctx, "fewer than two usable values; outlier bounds skipped",
				slog.String("stage", StageOutliers),
				slog.String("column", name))
			continue
		}

		var lower, upper float64
		switch treatment {
		case policy.IQR:
			q1, _ := col.Percentile(0.25)
			q3, _ := col.Percentile(0.75)
			spread := q3 - q1
			lower = q1 - 1.5*spread
			upper = q3 + 1.5*spread
		case policy.Clip:
			if rule.Min >= rule.Max {
				report.add(name, "clip bounds invalid; column unchanged")
				tr.logger.WarnContext(ctx, "clip bounds invalid; column unchanged",
					slog.String("column", name),
					slog.Float64("min", rule.Min),
					slog.Float64("max", rule.Max))
				continue
			}
			lower, upper = rule.Min, rule.Max
		}

		clamped := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				continue
			}
			switch v := col.Float(i); {
			case v < lower:
				col.SetFloat(i, lower)
				clamped++
			case v > upper:
				col.SetFloat(i, upper)
				clamped++
			}
		}
		if clamped > 0 {
			tr.logger.InfoContext(ctx, "bounded outliers",
				slog.String("column", name),
				slog.String("treatment", string(treatment)),
				slog.Float64("lower", lower),
				slog.Float64("upper", upper),
				slog.Int("cells", clamped))
		}
	}

	return out, report
}

// NormalizeFeatures rescales numeric columns: the given columns, or every
// numeric column when none are named, minus excluded names. Min-max maps
// onto [0,1] with constant columns collapsing to 0; z-score divides the
// centered values by the sample standard deviation, with zero spread
// collapsing to 0. Requested columns that do not exist are dropped from
// the request with an issue. Missing cells stay missing.
func (tr *Transformer) NormalizeFeatures(ctx context.Context, t *dataset.Table, columns, exclude []string) (*dataset.Table, *Report) {
	out := t.Clone()
	report := newReport(StageNormalize)
	excluded := toSet(exclude)

	var targets []string
	if len(columns) > 0 {
		for _, name := range columns {
			col, ok := out.Column(name)
			if !ok {
				report.add(name, "column not found")
				tr.logger.WarnContext(ctx, "column not found; dropped from request",
					slog.String("stage", StageNormalize),
					slog.String("column", name))
				continue
			}
			if col.Kind() != dataset.Numeric {
				report.add(name, "not numeric; skipped")
				tr.logger.WarnContext(ctx, "non-numeric column skipped for normalization",
					slog.String("column", name))
				continue
			}
			if !excluded[name] {
				targets = append(targets, name)
			}
		}
	} else {
		for _, name := range out.Names() {
			col, _ := out.Column(name)
			if col.Kind() == dataset.Numeric && !excluded[name] {
				targets = append(targets, name)
			}
		}
	}

	if len(targets) == 0 {
		report.add("", "no feature columns to normalize")
		tr.logger.WarnContext(ctx, "no feature columns to normalize",
			slog.String("stage", StageNormalize))
		return out, report
	}

	for _, name := range targets {
		col, _ := out.Column(name)

		switch tr.normalization {
		case NormalizeZScore:
			mean, ok := col.Mean()
			if !ok {
				report.add(name, "no usable values; column unchanged")
				continue
			}
			stddev, _ := col.StdDev()
			for i := 0; i < col.Len(); i++ {
				if col.IsMissing(i) {
					continue
				}
				if stddev == 0 {
					col.SetFloat(i, 0)
				} else {
					col.SetFloat(i, (col.Float(i)-mean)/stddev)
				}
			}

		default:
			min, ok := col.Min()
			if !ok {
				report.add(name, "no usable values; column unchanged")
				continue
			}
			max, _ := col.Max()
			span := max - min
			for i := 0; i < col.Len(); i++ {
				if col.IsMissing(i) {
					continue
				}
				if span == 0 {
					col.SetFloat(i, 0)
				} else {
					col.SetFloat(i, (col.Float(i)-min)/span)
				}
			}
		}
	}

	tr.logger.InfoContext(ctx, "normalized feature columns",
		slog.String("method", tr.normalization),
		slog.Int("columns", len(targets)))

	return out, report
}

// CreateDummyVariables expands categorical columns into one numeric 0/1
// indicator column per distinct value, named "<column>_<value>" and
// appended in sorted value order. Columns with more distinct values than
// the category cap keep their most frequent cap-1 values and remap the
// rest to "Other", whose indicator always exists for a capped column.
// Rows with a missing source cell get all-zero indicators. The source
// column is dropped unless the transformer keeps originals.
func (tr *Transformer) CreateDummyVariables(ctx context.Context, t *dataset.Table, columns []string) (*dataset.Table, *Report) {
	out := t.Clone()
	report := newReport(StageDummies)

	var targets []string
	if len(columns) > 0 {
		for _, name := range columns {
			if _, ok := out.Column(name); !ok {
				report.add(name, "column not found")
				tr.logger.WarnContext(ctx, "column not found; dropped from request",
					slog.String("stage", StageDummies),
					slog.String("column", name))
				continue
			}
			targets = append(targets, name)
		}
	} else {
		for _, name := range out.Names() {
			col, _ := out.Column(name)
			if col.Kind() == dataset.Text {
				targets = append(targets, name)
			}
		}
	}

	for _, name := range targets {
		col, _ := out.Column(name)
		if col.Kind() != dataset.Text {
			tr.logger.InfoContext(ctx, "non-text column skipped for dummy encoding",
				slog.String("column", name),
				slog.String("kind", string(col.Kind())))
			continue
		}
		if tr.maxCategories < 2 {
			report.add(name, "max_categories below 2; column left unexpanded")
			tr.logger.WarnContext(ctx, "max_categories below 2; column left unexpanded",
				slog.String("column", name),
				slog.Int("max_categories", tr.maxCategories))
			continue
		}

		counts := make(map[string]int)
		for i := 0; i < col.Len(); i++ {
			if !col.IsMissing(i) {
				counts[col.String(i)]++
			}
		}
		if len(counts) == 0 {
			report.add(name, "no usable values; column left unexpanded")
			tr.logger.WarnContext(ctx, "column has no usable values; left unexpanded",
				slog.String("stage", StageDummies),
				slog.String("column", name))
			continue
		}

		categorySet := make(map[string]bool, len(counts))
		if len(counts) > tr.maxCategories {
			kept := topCategories(counts, tr.maxCategories-1)
			remapped := 0
			for i := 0; i < col.Len(); i++ {
				if col.IsMissing(i) || kept[col.String(i)] {
					continue
				}
				col.SetString(i, "Other")
				remapped++
			}
			for value := range kept {
				categorySet[value] = true
			}
			// A capped column always gets an Other indicator
			categorySet["Other"] = true
			tr.logger.InfoContext(ctx, "rare categories remapped",
				slog.String("column", name),
				slog.Int("distinct", len(counts)),
				slog.Int("kept", len(kept)),
				slog.Int("cells", remapped))
		} else {
			for value := range counts {
				categorySet[value] = true
			}
		}

		categories := make([]string, 0, len(categorySet))
		for value := range categorySet {
			categories = append(categories, value)
		}
		sort.Strings(categories)

		rows := out.NumRows()
		added := 0
		for _, category := range categories {
			indicator := make([]float64, rows)
			for i := 0; i < rows; i++ {
				if !col.IsMissing(i) && col.String(i) == category {
					indicator[i] = 1
				}
			}
			dummy, err := dataset.NewNumericColumn(name+"_"+category, indicator, nil)
			if err != nil {
				report.add(name+"_"+category, "failed to build indicator: "+err.Error())
				continue
			}
			if err := out.AddColumn(dummy); err != nil {
				report.add(name+"_"+category, "indicator name collides with an existing column; skipped")
				tr.logger.WarnContext(ctx, "indicator name collides with an existing column; skipped",
					slog.String("column", name+"_"+category))
				continue
			}
			added++
		}

		if !tr.keepOriginal {
			out.DropColumn(name)
		}

		tr.logger.InfoContext(ctx, "expanded categorical column",
			slog.String("column", name),
			slog.Int("indicators", added))
	}

	return out, report
}

// topCategories returns the n most frequent values, breaking count ties
// by value order.
func topCategories(counts map[string]int, n int) map[string]bool {
	type categoryCount struct {
		value string
		count int
	}
	ranked := make([]categoryCount, 0, len(counts))
	for value, count := range counts {
		ranked = append(ranked, categoryCount{value, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].value < ranked[j].value
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	kept := make(map[string]bool, n)
	for _, rc := range ranked[:n] {
		kept[rc.value] = true
	}
	return kept
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
