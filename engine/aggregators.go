package engine

import (
	"github.com/samber/lo"
)

// ============================================================================
// AGGREGATOR — (metric, bucket) running sums via RowView
// ============================================================================
// Pipeline per row: derive bucket → skip or register → add every metric.
// Buckets are registered in first-seen order; registering a bucket
// zero-fills it for every metric, so no metric ever lacks a value for a
// bucket that exists.
// ============================================================================

// SeriesTable is the aggregator's output: metrics × buckets.
type SeriesTable struct {
	Metrics []Field     `json:"metrics"`
	Buckets []string    `json:"buckets"`
	Values  [][]float64 `json:"values"` // Values[metric][bucket]

	index map[string]int
}

// NewSeriesTable creates an empty table for metrics.
func NewSeriesTable(metrics []Field) *SeriesTable {
	return &SeriesTable{
		Metrics: metrics,
		Values:  make([][]float64, len(metrics)),
		index:   make(map[string]int),
	}
}

// Register adds bucket key if new and returns its position.
func (t *SeriesTable) Register(key string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[key]; ok {
		return i
	}
	t.index[key] = len(t.Buckets)
	t.Buckets = append(t.Buckets, key)
	for m := range t.Values {
		t.Values[m] = append(t.Values[m], 0)
	}
	return len(t.Buckets) - 1
}

// reindex rebuilds the bucket lookup, e.g. after JSON decoding.
func (t *SeriesTable) reindex() {
	t.index = make(map[string]int, len(t.Buckets))
	for i, b := range t.Buckets {
		t.index[b] = i
	}
	if len(t.Values) < len(t.Metrics) {
		t.Values = append(t.Values, make([][]float64, len(t.Metrics)-len(t.Values))...)
	}
}

// Add accumulates v into (metric, bucket), registering the bucket if needed.
func (t *SeriesTable) Add(metric int, key string, v float64) {
	b := t.Register(key)
	t.Values[metric][b] += v
}

// Value returns the total for (metric, bucket); 0 for unknown buckets.
func (t *SeriesTable) Value(metric int, key string) float64 {
	if t.index == nil {
		t.reindex()
	}
	b, ok := t.index[key]
	if !ok || metric < 0 || metric >= len(t.Values) || b >= len(t.Values[metric]) {
		return 0
	}
	return t.Values[metric][b]
}

// Series returns the values of the named metric, or nil.
func (t *SeriesTable) Series(name string) []float64 {
	i := t.MetricIndex(name)
	if i < 0 {
		return nil
	}
	return t.Values[i]
}

// MetricIndex returns the position of the named metric, or -1.
func (t *SeriesTable) MetricIndex(name string) int {
	for i, m := range t.Metrics {
		if m.Name() == name {
			return i
		}
	}
	return -1
}

// Total sums one metric across all buckets.
func (t *SeriesTable) Total(metric int) float64 {
	return lo.Sum(t.Values[metric])
}

// Len returns the number of buckets.
func (t *SeriesTable) Len() int { return len(t.Buckets) }

// Clone returns a deep copy.
func (t *SeriesTable) Clone() *SeriesTable {
	c := NewSeriesTable(t.Metrics)
	for _, b := range t.Buckets {
		c.Register(b)
	}
	for m := range t.Values {
		copy(c.Values[m], t.Values[m])
	}
	return c
}

// ============================================================================
// AGGREGATION
// ============================================================================

// Aggregate sums every metric per bucket of axis under g.
// Rows whose bucket is skipped contribute nothing; non-numeric metric
// values count as 0 and never drop a row.
func Aggregate(view RowView, metrics []Field, axis Field, g Granularity) *SeriesTable {
	t, _ := aggregate(view, metrics, axis.Name(), g, LabelOptions{Meta: axis.Meta()})
	return t
}

// aggregate also reports how many rows were skipped.
func aggregate(view RowView, metrics []Field, axis string, g Granularity, opts LabelOptions) (*SeriesTable, int) {
	t := NewSeriesTable(metrics)
	skipped := 0
	for i := 0; i < view.Len(); i++ {
		key, ok := LabelOf(view.Value(i, axis), g, opts)
		if !ok {
			skipped++
			continue
		}
		b := t.Register(key)
		for m, metric := range metrics {
			t.Values[m][b] += NumberOr(view.Value(i, metric.Name()))
		}
	}
	return t, skipped
}

// SumField sums a named field across a view. Non-numeric values count as 0.
func SumField(view RowView, field string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += NumberOr(view.Value(i, field))
	}
	return total
}

// UniqueValues returns distinct formatted values for a field, first seen first.
func UniqueValues(view RowView, field string) []string {
	var result []string
	for i := 0; i < view.Len(); i++ {
		v := view.Value(i, field)
		if IsNull(v) {
			continue
		}
		result = append(result, FormatValue(v, Meta{}))
	}
	return lo.Uniq(result)
}
