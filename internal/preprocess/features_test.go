package preprocess

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/internal/dataset"
	"agriprep/internal/policy"
	"agriprep/internal/shared/testutil"
)

func TestNewTransformer(t *testing.T) {
	t.Run("zero options fall back to defaults", func(t *testing.T) {
		tr := NewTransformer(nil, policy.Set{}, TransformOptions{})
		assert.NotNil(t, tr.logger)
		assert.Equal(t, NormalizeMinMax, tr.normalization)
		assert.Equal(t, 10, tr.maxCategories)
		assert.False(t, tr.keepOriginal)
	})

	t.Run("custom options", func(t *testing.T) {
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{
			Normalization: NormalizeZScore,
			MaxCategories: 4,
			KeepOriginal:  true,
		})
		assert.Equal(t, NormalizeZScore, tr.normalization)
		assert.Equal(t, 4, tr.maxCategories)
		assert.True(t, tr.keepOriginal)
	})
}

func TestTransformer_ProcessNumericColumns(t *testing.T) {
	ctx := context.Background()
	nan := math.NaN()

	iqrPolicy := func(name string) policy.Set {
		return policy.Set{Columns: map[string]policy.ColumnRule{
			name: {Outliers: policy.IQR},
		}}
	}

	t.Run("iqr clamps extreme values", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{1, 2, 3, 4, 1000}, nil))
		tr := NewTransformer(slog.Default(), iqrPolicy("Yield"), TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Yield")
		// Q1=2, Q3=4, so the upper fence is 4+1.5*2=7
		want := []float64{1, 2, 3, 4, 7}
		for i, expected := range want {
			assert.InDelta(t, expected, col.Float(i), 1e-9, "row %d", i)
		}
	})

	t.Run("clip clamps into the fixed range", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Soil_Health_Index", []float64{-5, 5, 15}, nil))
		policies := policy.Set{Columns: map[string]policy.ColumnRule{
			"Soil_Health_Index": {Outliers: policy.Clip, Min: 0, Max: 10},
		}}
		tr := NewTransformer(slog.Default(), policies, TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Soil_Health_Index")
		assert.InDelta(t, 0.0, col.Float(0), 1e-9)
		assert.InDelta(t, 5.0, col.Float(1), 1e-9)
		assert.InDelta(t, 10.0, col.Float(2), 1e-9)
	})

	t.Run("missing cells stay missing", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Soil_Health_Index", []float64{-5, nan, 15}, nil))
		policies := policy.Set{Columns: map[string]policy.ColumnRule{
			"Soil_Health_Index": {Outliers: policy.Clip, Min: 0, Max: 10},
		}}
		tr := NewTransformer(slog.Default(), policies, TransformOptions{})

		out, _ := tr.ProcessNumericColumns(ctx, table, nil)

		col, _ := out.Column("Soil_Health_Index")
		assert.True(t, col.IsMissing(1))
		assert.InDelta(t, 10.0, col.Float(2), 1e-9)
	})

	t.Run("unlisted numeric columns pick up the blanket iqr treatment", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Humidity", []float64{1, 2, 3, 4, 1000}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{UnlistedNumeric: policy.IQR}, TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Humidity")
		assert.InDelta(t, 7.0, col.Float(4), 1e-9)
	})

	t.Run("columns without a treatment are untouched", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Humidity", []float64{1, 2, 3, 4, 1000}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Humidity")
		assert.InDelta(t, 1000.0, col.Float(4), 1e-9)
	})

	t.Run("excluded columns are untouched", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{1, 2, 3, 4, 1000}, nil))
		tr := NewTransformer(slog.Default(), iqrPolicy("Yield"), TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, []string{"Yield"})

		assert.True(t, report.Empty())
		col, _ := out.Column("Yield")
		assert.InDelta(t, 1000.0, col.Float(4), 1e-9)
	})

	t.Run("text columns are skipped", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Country", []string{"Kenya", "India"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{UnlistedNumeric: policy.IQR}, TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Country")
		assert.Equal(t, "Kenya", col.String(0))
	})

	t.Run("fewer than two usable values", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t, numCol(t, "Yield", []float64{5, nan}, nil))
		tr := NewTransformer(logger, iqrPolicy("Yield"), TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		require.Len(t, report.Issues, 1)
		assert.Contains(t, report.Issues[0].Reason, "fewer than two usable values")
		col, _ := out.Column("Yield")
		assert.InDelta(t, 5.0, col.Float(0), 1e-9)
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "fewer than two usable values")
	})

	t.Run("invalid clip bounds leave the column unchanged", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t, numCol(t, "Yield", []float64{-5, 5, 15}, nil))
		policies := policy.Set{Columns: map[string]policy.ColumnRule{
			"Yield": {Outliers: policy.Clip, Min: 10, Max: 10},
		}}
		tr := NewTransformer(logger, policies, TransformOptions{})

		out, report := tr.ProcessNumericColumns(ctx, table, nil)

		require.Len(t, report.Issues, 1)
		assert.Contains(t, report.Issues[0].Reason, "clip bounds invalid")
		col, _ := out.Column("Yield")
		assert.InDelta(t, -5.0, col.Float(0), 1e-9)
		assert.InDelta(t, 15.0, col.Float(2), 1e-9)
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "clip bounds invalid")
	})

	t.Run("input table is not mutated", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{1, 2, 3, 4, 1000}, nil))
		tr := NewTransformer(slog.Default(), iqrPolicy("Yield"), TransformOptions{})

		tr.ProcessNumericColumns(ctx, table, nil)

		col, _ := table.Column("Yield")
		assert.InDelta(t, 1000.0, col.Float(4), 1e-9)
	})
}

func TestTransformer_NormalizeFeatures(t *testing.T) {
	ctx := context.Background()
	nan := math.NaN()

	t.Run("minmax maps onto the unit interval", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{10, 20, 30}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.NormalizeFeatures(ctx, table, nil, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Yield")
		assert.InDelta(t, 0.0, col.Float(0), 1e-9)
		assert.InDelta(t, 0.5, col.Float(1), 1e-9)
		assert.InDelta(t, 1.0, col.Float(2), 1e-9)
	})

	t.Run("constant column collapses to zero", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{7, 7, 7}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.NormalizeFeatures(ctx, table, nil, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Yield")
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 0.0, col.Float(i), 1e-9)
		}
	})

	t.Run("zscore centers and scales", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{2, 4, 6}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{Normalization: NormalizeZScore})

		out, report := tr.NormalizeFeatures(ctx, table, nil, nil)

		assert.True(t, report.Empty())
		col, _ := out.Column("Yield")
		assert.InDelta(t, -1.0, col.Float(0), 1e-9)
		assert.InDelta(t, 0.0, col.Float(1), 1e-9)
		assert.InDelta(t, 1.0, col.Float(2), 1e-9)
	})

	t.Run("zscore on constant column collapses to zero", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{5, 5}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{Normalization: NormalizeZScore})

		out, _ := tr.NormalizeFeatures(ctx, table, nil, nil)

		col, _ := out.Column("Yield")
		assert.InDelta(t, 0.0, col.Float(0), 1e-9)
		assert.InDelta(t, 0.0, col.Float(1), 1e-9)
	})

	t.Run("missing cells stay missing and do not affect the range", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Yield", []float64{10, nan, 30}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, _ := tr.NormalizeFeatures(ctx, table, nil, nil)

		col, _ := out.Column("Yield")
		assert.InDelta(t, 0.0, col.Float(0), 1e-9)
		assert.True(t, col.IsMissing(1))
		assert.InDelta(t, 1.0, col.Float(2), 1e-9)
	})

	t.Run("explicit request reports unknown and non-numeric columns", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t,
			numCol(t, "Yield", []float64{10, 20}, nil),
			textCol(t, "Country", []string{"Kenya", "India"}, nil))
		tr := NewTransformer(logger, policy.Set{}, TransformOptions{})

		out, report := tr.NormalizeFeatures(ctx, table, []string{"Yield", "Country", "Nope"}, nil)

		require.Len(t, report.Issues, 2)
		col, _ := out.Column("Yield")
		assert.InDelta(t, 1.0, col.Float(1), 1e-9)
		country, _ := out.Column("Country")
		assert.Equal(t, "Kenya", country.String(0))
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "column not found")
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "non-numeric column skipped")
	})

	t.Run("excluded identifier columns keep their values", func(t *testing.T) {
		table := buildTable(t,
			numCol(t, "Year", []float64{2019, 2020, 2021}, nil),
			numCol(t, "Yield", []float64{10, 20, 30}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.NormalizeFeatures(ctx, table, nil, []string{"Year"})

		assert.True(t, report.Empty())
		year, _ := out.Column("Year")
		assert.InDelta(t, 2019.0, year.Float(0), 1e-9)
		yield, _ := out.Column("Yield")
		assert.InDelta(t, 0.5, yield.Float(1), 1e-9)
	})

	t.Run("no targets leaves the table unchanged", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t, textCol(t, "Country", []string{"Kenya"}, nil))
		tr := NewTransformer(logger, policy.Set{}, TransformOptions{})

		out, report := tr.NormalizeFeatures(ctx, table, nil, nil)

		require.Len(t, report.Issues, 1)
		assert.Contains(t, report.Issues[0].Reason, "no feature columns to normalize")
		assert.Equal(t, 1, out.NumRows())
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "no feature columns to normalize")
	})
}

func TestTransformer_CreateDummyVariables(t *testing.T) {
	ctx := context.Background()

	t.Run("expands in sorted category order and drops the source", func(t *testing.T) {
		table := buildTable(t,
			numCol(t, "Year", []float64{2019, 2020, 2021}, nil),
			textCol(t, "Crop_Type", []string{"Wheat", "Rice", "Wheat"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		assert.True(t, report.Empty())
		assert.Equal(t, []string{"Year", "Crop_Type_Rice", "Crop_Type_Wheat"}, out.Names())

		rice, _ := out.Column("Crop_Type_Rice")
		wheat, _ := out.Column("Crop_Type_Wheat")
		assert.Equal(t, dataset.Numeric, rice.Kind())
		assert.InDelta(t, 0.0, rice.Float(0), 1e-9)
		assert.InDelta(t, 1.0, rice.Float(1), 1e-9)
		assert.InDelta(t, 1.0, wheat.Float(0), 1e-9)
		assert.InDelta(t, 0.0, wheat.Float(1), 1e-9)
		assert.InDelta(t, 1.0, wheat.Float(2), 1e-9)
	})

	t.Run("each row lights exactly one indicator", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Region",
			[]string{"North", "South", "East", "North", "East"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, _ := tr.CreateDummyVariables(ctx, table, nil)

		for i := 0; i < out.NumRows(); i++ {
			sum := 0.0
			for j := 0; j < out.NumCols(); j++ {
				sum += out.At(j).Float(i)
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "row %d", i)
		}
	})

	t.Run("missing source cell gets all-zero indicators", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Region",
			[]string{"North", "", "South"},
			[]bool{false, true, false}))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		assert.True(t, report.Empty())
		north, _ := out.Column("Region_North")
		south, _ := out.Column("Region_South")
		assert.InDelta(t, 0.0, north.Float(1), 1e-9)
		assert.InDelta(t, 0.0, south.Float(1), 1e-9)
		assert.False(t, north.IsMissing(1))
	})

	t.Run("keep original retains the source column", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Region", []string{"North", "South"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{KeepOriginal: true})

		out, _ := tr.CreateDummyVariables(ctx, table, nil)

		region, ok := out.Column("Region")
		require.True(t, ok)
		assert.Equal(t, "North", region.String(0))
	})

	t.Run("caps categories and remaps the rest to Other", func(t *testing.T) {
		values := []string{"A", "A", "A", "B", "B", "C", "D"}
		table := buildTable(t, textCol(t, "Crop_Type", values, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{MaxCategories: 3})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		assert.True(t, report.Empty())
		assert.Equal(t, []string{"Crop_Type_A", "Crop_Type_B", "Crop_Type_Other"}, out.Names())

		other, _ := out.Column("Crop_Type_Other")
		want := []float64{0, 0, 0, 0, 0, 1, 1}
		for i, expected := range want {
			assert.InDelta(t, expected, other.Float(i), 1e-9, "row %d", i)
		}
	})

	t.Run("cap not exceeded means no Other", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Crop_Type", []string{"A", "B", "C"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{MaxCategories: 3})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		assert.True(t, report.Empty())
		_, hasOther := out.Column("Crop_Type_Other")
		assert.False(t, hasOther)
		assert.Equal(t, 3, out.NumCols())
	})

	t.Run("cap below two leaves the column unexpanded", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t, textCol(t, "Region", []string{"North", "South"}, nil))
		tr := NewTransformer(logger, policy.Set{}, TransformOptions{MaxCategories: 1})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		require.Len(t, report.Issues, 1)
		assert.Contains(t, report.Issues[0].Reason, "max_categories below 2")
		region, ok := out.Column("Region")
		require.True(t, ok)
		assert.Equal(t, "North", region.String(0))
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "max_categories below 2")
	})

	t.Run("all-missing column left unexpanded", func(t *testing.T) {
		table := buildTable(t, textCol(t, "Region", []string{"", ""}, []bool{true, true}))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.CreateDummyVariables(ctx, table, nil)

		require.Len(t, report.Issues, 1)
		assert.Contains(t, report.Issues[0].Reason, "no usable values")
		_, ok := out.Column("Region")
		assert.True(t, ok)
	})

	t.Run("explicit request reports unknown columns", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		table := buildTable(t, textCol(t, "Region", []string{"North"}, nil))
		tr := NewTransformer(logger, policy.Set{}, TransformOptions{})

		_, report := tr.CreateDummyVariables(ctx, table, []string{"Nope"})

		require.Len(t, report.Issues, 1)
		assert.Equal(t, "Nope", report.Issues[0].Column)
		assert.Equal(t, StageDummies, report.Issues[0].Stage)
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "column not found")
	})

	t.Run("numeric column in an explicit request is skipped without an issue", func(t *testing.T) {
		table := buildTable(t, numCol(t, "Year", []float64{2019, 2020}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.CreateDummyVariables(ctx, table, []string{"Year"})

		assert.True(t, report.Empty())
		year, ok := out.Column("Year")
		require.True(t, ok)
		assert.InDelta(t, 2019.0, year.Float(0), 1e-9)
	})

	t.Run("indicator name collision is reported and skipped", func(t *testing.T) {
		table := buildTable(t,
			numCol(t, "Crop_Wheat", []float64{1, 2}, nil),
			textCol(t, "Crop", []string{"Wheat", "Rice"}, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{})

		out, report := tr.CreateDummyVariables(ctx, table, []string{"Crop"})

		require.Len(t, report.Issues, 1)
		assert.Equal(t, "Crop_Wheat", report.Issues[0].Column)
		assert.Contains(t, report.Issues[0].Reason, "collides")

		// The pre-existing column survives untouched and the other
		// indicator still lands.
		existing, _ := out.Column("Crop_Wheat")
		assert.InDelta(t, 1.0, existing.Float(0), 1e-9)
		assert.InDelta(t, 2.0, existing.Float(1), 1e-9)
		rice, ok := out.Column("Crop_Rice")
		require.True(t, ok)
		assert.InDelta(t, 1.0, rice.Float(1), 1e-9)
	})

	t.Run("input table is not mutated by capping", func(t *testing.T) {
		values := []string{"A", "A", "B", "C"}
		table := buildTable(t, textCol(t, "Crop_Type", values, nil))
		tr := NewTransformer(slog.Default(), policy.Set{}, TransformOptions{MaxCategories: 2})

		tr.CreateDummyVariables(ctx, table, nil)

		source, _ := table.Column("Crop_Type")
		assert.Equal(t, "B", source.String(2))
		assert.Equal(t, "C", source.String(3))
	})
}
