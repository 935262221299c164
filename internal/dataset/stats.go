package dataset

import (
	"math"
	"sort"
	"time"
)

// Statistics over a column's non-missing values. Every function returns
// ok=false when the column holds no usable values; none of them panic.

// Values returns the non-missing numeric values in row order. Non-numeric
// columns return nil.
func (c *Column) Values() []float64 {
	if c.kind != Numeric {
		return nil
	}
	values := make([]float64, 0, len(c.floats))
	for i, v := range c.floats {
		if c.missing[i] || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// Mean returns the arithmetic mean of the non-missing values
func (c *Column) Mean() (float64, bool) {
	values := c.Values()
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Median returns the median of the non-missing values
func (c *Column) Median() (float64, bool) {
	values := c.Values()
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2, true
	}
	return sorted[n/2], true
}

// Min returns the smallest non-missing value
func (c *Column) Min() (float64, bool) {
	values := c.Values()
	if len(values) == 0 {
		return 0, false
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest non-missing value
func (c *Column) Max() (float64, bool) {
	values := c.Values()
	if len(values) == 0 {
		return 0, false
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// StdDev returns the sample standard deviation of the non-missing values
func (c *Column) StdDev() (float64, bool) {
	values := c.Values()
	if len(values) <= 1 {
		return 0, len(values) == 1
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSquaredDeviations := 0.0
	for _, v := range values {
		deviation := v - mean
		sumSquaredDeviations += deviation * deviation
	}
	return math.Sqrt(sumSquaredDeviations / float64(len(values)-1)), true
}

// Percentile returns the value at percentile p in [0,1], using linear
// interpolation between the closest ranks.
func (c *Column) Percentile(p float64) (float64, bool) {
	values := c.Values()
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return percentileValue(sorted, p), true
}

// percentileValue calculates the value at a given percentile of a sorted
// slice, interpolating linearly between neighbors.
func percentileValue(sorted []float64, percentile float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 1 {
		return sorted[n-1]
	}

	index := percentile * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ModeFloat returns the most frequent non-missing value of a numeric
// column. Ties resolve to the smallest value.
func (c *Column) ModeFloat() (float64, bool) {
	if c.kind != Numeric {
		return 0, false
	}
	counts := make(map[float64]int)
	for i, v := range c.floats {
		if c.missing[i] || math.IsNaN(v) {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return 0, false
	}

	best := math.NaN()
	bestCount := 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best, true
}

// ModeString returns the most frequent non-missing value of a text
// column. Ties resolve to the lexicographically smallest value.
func (c *Column) ModeString() (string, bool) {
	if c.kind != Text {
		return "", false
	}
	counts := make(map[string]int)
	for i, v := range c.strings {
		if c.missing[i] {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}

	best := ""
	bestCount := 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best, true
}

// ModeTime returns the most frequent non-missing value of a time column.
// Ties resolve to the earliest value.
func (c *Column) ModeTime() (time.Time, bool) {
	if c.kind != Time {
		return time.Time{}, false
	}
	counts := make(map[time.Time]int)
	for i, v := range c.times {
		if c.missing[i] {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return time.Time{}, false
	}

	var best time.Time
	bestCount := 0
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v.Before(best)) {
			best = v
			bestCount = count
		}
	}
	return best, true
}
