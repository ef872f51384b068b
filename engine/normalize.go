package engine

import (
	"strings"
)

// ============================================================================
// NORMALIZER — raw totals → percentages, stacked-total overlay
// ============================================================================
// Normalize never mutates its input. A zero denominator leaves the affected
// values as they were.
// ============================================================================

// NormalizationMode selects the post-aggregation rescaling pass.
type NormalizationMode int

const (
	NormalizeRaw           NormalizationMode = iota
	NormalizePercentGlobal                   // share of the grand total
	NormalizePercentBucket                   // share of the bucket total
)

var normalizationNames = map[NormalizationMode]string{
	NormalizeRaw:           "raw",
	NormalizePercentGlobal: "percent_global",
	NormalizePercentBucket: "percent_bucket",
}

func (m NormalizationMode) String() string {
	if name, ok := normalizationNames[m]; ok {
		return name
	}
	return "raw"
}

// ParseNormalizationMode maps a mode name to its value. Both the short names
// and "percent-of-global-total" / "percent-of-bucket-total" are accepted.
// Unknown names fall back to NormalizeRaw.
func ParseNormalizationMode(s string) NormalizationMode {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "percent_global", "percent_of_global_total", "global":
		return NormalizePercentGlobal
	case "percent_bucket", "percent_of_bucket_total", "bucket":
		return NormalizePercentBucket
	}
	return NormalizeRaw
}

// MarshalText implements encoding.TextMarshaler.
func (m NormalizationMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NormalizationMode) UnmarshalText(b []byte) error {
	*m = ParseNormalizationMode(string(b))
	return nil
}

// AutoPercentMode returns the percentage mode dashboards pick by convention:
// the global share for a single metric, the per-bucket share otherwise.
func AutoPercentMode(metricCount int) NormalizationMode {
	if metricCount <= 1 {
		return NormalizePercentGlobal
	}
	return NormalizePercentBucket
}

// Normalize returns a rescaled copy of t.
func Normalize(t *SeriesTable, mode NormalizationMode) *SeriesTable {
	out := t.Clone()

	switch mode {
	case NormalizePercentGlobal:
		var grand float64
		for m := range out.Values {
			grand += out.Total(m)
		}
		if grand == 0 {
			return out
		}
		for m := range out.Values {
			for b := range out.Values[m] {
				out.Values[m][b] = out.Values[m][b] / grand * 100
			}
		}

	case NormalizePercentBucket:
		for b := range out.Buckets {
			var sum float64
			for m := range out.Values {
				sum += out.Values[m][b]
			}
			if sum == 0 {
				continue
			}
			for m := range out.Values {
				out.Values[m][b] = out.Values[m][b] / sum * 100
			}
		}
	}

	return out
}

// StackedTotals computes one total per bucket over the visible metrics and
// the index of the last visible metric with a non-zero segment, where the
// total label is drawn.
func StackedTotals(t *SeriesTable, hidden ...string) []StackTotal {
	skip := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		skip[h] = true
	}

	totals := make([]StackTotal, len(t.Buckets))
	for b, key := range t.Buckets {
		st := StackTotal{Bucket: key, LastSegment: -1}
		for m, metric := range t.Metrics {
			if skip[metric.Name()] {
				continue
			}
			v := t.Values[m][b]
			st.Total += v
			if v != 0 {
				st.LastSegment = m
			}
		}
		totals[b] = st
	}
	return totals
}
