package engine

import (
	"math"
	"sort"
)

// ============================================================================
// TEXT BUILDER — KPI cards: highest-value ranking and uplift
// ============================================================================

// NotAvailable is shown when a KPI has no data.
const NotAvailable = "N/A"

// KPIEntry is one ranked axis value.
type KPIEntry struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// KPIRanking orders axis values by a metric, highest first.
type KPIRanking struct {
	Metric  string     `json:"metric"`
	Entries []KPIEntry `json:"entries"`
	Top     *KPIEntry  `json:"top,omitempty"`
	Display string     `json:"display"`
}

// RankKPI ranks rows by metric. Rows whose metric is not numeric are left
// out; a blank axis value is labelled "N/A". Ties keep row order.
func RankKPI(view RowView, axis, metric Field) *KPIRanking {
	meta := metric.Meta()
	r := &KPIRanking{Metric: metric.Name(), Display: NotAvailable}
	for i := 0; i < view.Len(); i++ {
		v, ok := ToFloat(view.Value(i, metric.Name()))
		if !ok {
			continue
		}
		label := FormatValue(view.Value(i, axis.Name()), axis.Meta())
		if label == "" {
			label = NotAvailable
		}
		r.Entries = append(r.Entries, KPIEntry{
			Label:   label,
			Value:   v,
			Display: formatKPI(v, meta),
		})
	}

	sort.SliceStable(r.Entries, func(i, j int) bool {
		return r.Entries[i].Value > r.Entries[j].Value
	})
	if len(r.Entries) > 0 {
		top := r.Entries[0]
		r.Top = &top
		r.Display = top.Display
	}
	return r
}

func formatKPI(v float64, meta Meta) string {
	s := meta.Prefix + FormatNumber(math.Round(v))
	if meta.Unit != "" {
		s += " " + meta.Unit
	}
	return s
}

// Uplift expresses value as a whole percentage of reference.
// ok is false when reference is zero.
func Uplift(value, reference float64) (float64, bool) {
	if reference == 0 {
		return 0, false
	}
	return math.Round(value / reference * 100), true
}

// UpliftSummary reads metrics from row and expresses each as a percentage of
// reference, which itself shows as 100%. Metrics that are not numeric, or a
// zero reference, fall back to the plain formatted value.
func UpliftSummary(row Row, metrics []Field, reference Field) []KPIEntry {
	ref, refOK := ToFloat(row[reference.Name()])
	entries := make([]KPIEntry, 0, len(metrics))
	for _, m := range metrics {
		raw := row[m.Name()]
		v, ok := ToFloat(raw)
		e := KPIEntry{Label: m.Title(), Value: v}
		switch {
		case !ok:
			e.Display = NotAvailable
		case m.Name() == reference.Name() && refOK && ref != 0:
			e.Display = "100%"
			e.Value = 100
		case refOK:
			if pct, ok := Uplift(v, ref); ok {
				e.Value = pct
				e.Display = FormatNumber(pct) + "%"
			} else {
				e.Display = FormatNumber(v)
			}
		default:
			e.Display = FormatNumber(v)
		}
		entries = append(entries, e)
	}
	return entries
}
