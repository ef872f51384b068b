package schema

import (
	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// SCHEMA — Describes the shape of a result set for the series engine
// ============================================================================
// Auto-discovered from loaded rows (DiscoverFromView) or written by hand.
// Dimensions are candidate axes, measures are candidate metrics. The
// Suggestion turns the best guess into a ready SeriesRequest.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`

	Suggestion *Suggestion `json:"suggestion,omitempty"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
	RowCount       int    `json:"rowCount"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// DimensionMeta describes a field usable as a chart axis.
type DimensionMeta struct {
	Key             string                `json:"key"`
	DisplayName     string                `json:"displayName"`
	SampleValues    []string              `json:"sampleValues"`
	Groupable       bool                  `json:"groupable"`
	Filterable      bool                  `json:"filterable"`
	IsTemporal      bool                  `json:"isTemporal,omitempty"`
	TemporalFormat  string                `json:"temporalFormat,omitempty"`
	Granularity     engine.Granularity    `json:"granularity"`
	Ordering        engine.OrderingPolicy `json:"ordering"`
	CardinalityHint string                `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric field usable as a metric.
type MeasureMeta struct {
	Key         string      `json:"key"`
	DisplayName string      `json:"displayName"`
	Unit        string      `json:"unit,omitempty"`
	Format      engine.Meta `json:"format"`
	Total       float64     `json:"total"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column"`
	Reason      string `json:"reason"`
	Recoverable bool   `json:"recoverable"` // Can be restored if consumer overrides
}

// Suggestion is the discovered default chart.
type Suggestion struct {
	Axis        string                `json:"axis"`
	Metrics     []string              `json:"metrics"`
	Granularity engine.Granularity    `json:"granularity"`
	Ordering    engine.OrderingPolicy `json:"ordering"`
}

// Field returns the dimension as an engine field.
func (d DimensionMeta) Field() engine.Field {
	return engine.Described{Key: d.Key, Label: d.DisplayName}
}

// Field returns the measure as an engine field carrying its format.
func (m MeasureMeta) Field() engine.Field {
	return engine.Described{Key: m.Key, Label: m.DisplayName, Format: m.Format}
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Measure looks up a measure by key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Request builds the suggested SeriesRequest and the options matching its
// ordering. ok is false when nothing could be suggested.
func (c Config) Request() (engine.SeriesRequest, []engine.Option, bool) {
	s := c.Suggestion
	if s == nil || s.Axis == "" || len(s.Metrics) == 0 {
		return engine.SeriesRequest{}, nil, false
	}

	req := engine.SeriesRequest{Granularity: s.Granularity, Title: c.Name}
	if d, ok := c.Dimension(s.Axis); ok {
		req.Axis = d.Field()
	} else {
		req.Axis = engine.Named(s.Axis)
	}
	for _, key := range s.Metrics {
		if m, ok := c.Measure(key); ok {
			req.Metrics = append(req.Metrics, m.Field())
		} else {
			req.Metrics = append(req.Metrics, engine.Named(key))
		}
	}

	var opts []engine.Option
	if s.Ordering != engine.PolicyFor(s.Granularity) {
		opts = append(opts, engine.WithOrdering(s.Ordering))
	}
	return req, opts, true
}
