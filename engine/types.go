package engine

import (
	"encoding/json"
	"strings"
)

// ============================================================================
// SERIESAGG ENGINE TYPES — Rows in, categorical series out
// ============================================================================
// Rows arrive from the host's data layer as plain key → scalar maps.
// Fields (axis + metrics) are resolved once at the boundary into the
// Field union and never re-inspected downstream.
// ============================================================================

// ============================================================================
// ROW — one query result row
// ============================================================================

// Row maps a field name to a scalar: float64, int, int64, string, bool,
// time.Time or nil. Rows are never mutated by the engine.
type Row map[string]any

// ============================================================================
// FIELD — Named(name) | Described(name, title, meta)
// ============================================================================

// Meta carries formatting hints for a field.
type Meta struct {
	Decimals *int   `json:"decimals,omitempty"` // nil = integral values bare, others as-is
	Unit     string `json:"unit,omitempty"`     // appended after a space: "12 min"
	Prefix   string `json:"prefix,omitempty"`   // prepended: "$12"
}

// Field identifies a row key plus how to present it.
// The two variants are Named and Described.
type Field interface {
	Name() string
	Title() string
	Meta() Meta
	isField()
}

// Named is a bare field name. Its title is derived from the name.
type Named string

func (n Named) Name() string  { return string(n) }
func (n Named) Title() string { return LabelForField(string(n)) }
func (n Named) Meta() Meta    { return Meta{} }
func (Named) isField()        {}

// Described is a field with an explicit display title and formatting meta.
type Described struct {
	Key    string `json:"name"`
	Label  string `json:"title"`
	Format Meta   `json:"meta"`
}

func (d Described) Name() string { return d.Key }
func (d Described) Title() string {
	if d.Label == "" {
		return LabelForField(d.Key)
	}
	return d.Label
}
func (d Described) Meta() Meta { return d.Format }
func (Described) isField()     {}

// MetricSpec is a Field that names a numeric measure.
type MetricSpec = Field

// ResolveField turns a boundary value into a Field.
// Accepts a Field, a string, or a decoded JSON object {name,title,meta}.
// Returns nil when nothing usable is present.
func ResolveField(v any) Field {
	switch f := v.(type) {
	case Field:
		return f
	case string:
		if strings.TrimSpace(f) == "" {
			return nil
		}
		return Named(f)
	case map[string]any:
		name, _ := f["name"].(string)
		if name == "" {
			return nil
		}
		title, _ := f["title"].(string)
		d := Described{Key: name, Label: title}
		if raw, ok := f["meta"]; ok {
			if b, err := json.Marshal(raw); err == nil {
				_ = json.Unmarshal(b, &d.Format)
			}
		}
		if title == "" && d.Format == (Meta{}) {
			return Named(name)
		}
		return d
	}
	return nil
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// ============================================================================
// FILTERS
// ============================================================================

// Filters define which rows to include.
// Keys are field names. Values are allowed formatted values.
// OR within a field, AND across fields. Empty = all.
type Filters struct {
	Fields map[string][]string `json:"fields"`
}

// HasFilter returns true if a specific field filter is set.
func (f Filters) HasFilter(field string) bool {
	if f.Fields == nil {
		return false
	}
	vals, ok := f.Fields[field]
	return ok && len(vals) > 0
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Fields {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// REQUEST / RESULT
// ============================================================================

// SeriesRequest names what to aggregate. Everything about how the result is
// shaped (ordering, percentages, totals) is set through Options.
type SeriesRequest struct {
	Axis        Field
	Metrics     []Field
	Granularity Granularity
	Filters     Filters
	Title       string
}

// Result is the engine's render-ready output.
type Result struct {
	Success bool       `json:"success"`
	Type    string     `json:"type"` // "chart"
	Title   string     `json:"title"`
	Summary string     `json:"summary"`
	Chart   *ChartData `json:"chart,omitempty"`
	Table   *TableData `json:"table,omitempty"`

	RowCount     int      `json:"rowCount"`
	SkippedCount int      `json:"skippedCount"`
	Warnings     []string `json:"warnings,omitempty"`

	// Series is the ordered, normalized table the chart was built from.
	Series *SeriesTable `json:"-"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartData is consumable by any category-axis renderer (bar/line/area).
type ChartData struct {
	Labels   []string     `json:"labels"`
	Datasets []Dataset    `json:"datasets"`
	Totals   []StackTotal `json:"totals,omitempty"`
}

// Dataset is one named series aligned with ChartData.Labels.
type Dataset struct {
	Label      string    `json:"label"`
	Metric     string    `json:"metric"`
	Data       []float64 `json:"data"`
	Type       string    `json:"type"` // "bar" or "line"
	Color      string    `json:"color,omitempty"`
	HoverColor string    `json:"hoverColor,omitempty"`
	Order      int       `json:"order"`
	Hidden     bool      `json:"hidden,omitempty"`
}

// StackTotal is the on-chart total label for one stacked bucket.
type StackTotal struct {
	Bucket      string  `json:"bucket"`
	Total       float64 `json:"total"`
	LastSegment int     `json:"lastSegment"` // metric index carrying the label, -1 = none
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
