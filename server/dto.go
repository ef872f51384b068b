package server

import (
	"github.com/spektr-org/seriesagg/engine"
)

// Fields in requests are either a bare name ("sales") or an object
// {"name": "sales", "title": "Sales", "meta": {"prefix": "$"}}.

// DataRef selects the rows a request runs against: inline rows, or a
// dataset configured on the server.
type DataRef struct {
	Rows    []engine.Row `json:"rows,omitempty"`
	Dataset string       `json:"dataset,omitempty"`
}

// SeriesRequest is the body of POST /api/series.
type SeriesRequest struct {
	DataRef
	Axis          any                 `json:"axis"`
	Metrics       []any               `json:"metrics"`
	Granularity   string              `json:"granularity,omitempty"`
	Ordering      string              `json:"ordering,omitempty"`
	Reverse       bool                `json:"reverse,omitempty"`
	Normalization string              `json:"normalization,omitempty"`
	Round         bool                `json:"round,omitempty"`
	TotalBucket   bool                `json:"totalBucket,omitempty"`
	WeekRange     bool                `json:"weekRange,omitempty"`
	MetricLimit   int                 `json:"metricLimit,omitempty"`
	Hidden        []string            `json:"hidden,omitempty"`
	Lines         []any               `json:"lines,omitempty"`
	Palette       []string            `json:"palette,omitempty"`
	Filters       map[string][]string `json:"filters,omitempty"`
	Title         string              `json:"title,omitempty"`
	Language      string              `json:"language,omitempty"` // translate labels into this language
}

// SeriesResponse is the chart payload.
type SeriesResponse struct {
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	Chart        *engine.ChartData `json:"chart"`
	Table        *engine.TableData `json:"table,omitempty"`
	RowCount     int               `json:"rowCount"`
	SkippedCount int               `json:"skippedCount"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// ExportRequest is the body of POST /api/export.
type ExportRequest struct {
	DataRef
	Columns []string `json:"columns,omitempty"`
	Name    string   `json:"name,omitempty"` // chart name used in the file name
}

// HeatmapRequest is the body of POST /api/heatmap.
type HeatmapRequest struct {
	DataRef
	X     any `json:"x"`
	Y     any `json:"y"`
	Value any `json:"value"`
}

// MatrixRequest is the body of POST /api/matrix.
type MatrixRequest struct {
	DataRef
	X     any `json:"x"`
	Y     any `json:"y"`
	Z     any `json:"z"`
	Label any `json:"label,omitempty"`
}

// KPIRequest is the body of POST /api/kpi. With Reference set, the response
// also carries uplift percentages of Metrics against Reference, read from
// the first row.
type KPIRequest struct {
	DataRef
	Axis      any   `json:"axis"`
	Metric    any   `json:"metric"`
	Metrics   []any `json:"metrics,omitempty"`
	Reference any   `json:"reference,omitempty"`
}

// KPIResponse is the KPI payload.
type KPIResponse struct {
	Ranking *engine.KPIRanking `json:"ranking"`
	Uplift  []engine.KPIEntry  `json:"uplift,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// options translates the request flags into engine options.
func (r SeriesRequest) options() []engine.Option {
	var opts []engine.Option
	if r.Ordering != "" {
		opts = append(opts, engine.WithOrdering(engine.ParseOrderingPolicy(r.Ordering)))
	}
	if r.Reverse {
		opts = append(opts, engine.WithReverse())
	}
	if r.Normalization != "" {
		opts = append(opts, engine.WithNormalization(engine.ParseNormalizationMode(r.Normalization)))
	}
	if r.Round {
		opts = append(opts, engine.WithRounding())
	}
	if r.TotalBucket {
		opts = append(opts, engine.WithTotalBucket())
	}
	if r.WeekRange {
		opts = append(opts, engine.WithWeekRange())
	}
	if r.MetricLimit > 0 {
		opts = append(opts, engine.WithMetricLimit(r.MetricLimit))
	}
	if len(r.Hidden) > 0 {
		opts = append(opts, engine.WithHiddenMetrics(r.Hidden...))
	}
	if lines := resolveFields(r.Lines); len(lines) > 0 {
		opts = append(opts, engine.WithLineMetrics(lines...))
	}
	if len(r.Palette) > 0 {
		opts = append(opts, engine.WithPalette(r.Palette...))
	}
	return opts
}

// request builds the engine request.
func (r SeriesRequest) request() engine.SeriesRequest {
	return engine.SeriesRequest{
		Axis:        engine.ResolveField(r.Axis),
		Metrics:     resolveFields(r.Metrics),
		Granularity: engine.ParseGranularity(r.Granularity),
		Filters:     engine.Filters{Fields: r.Filters},
		Title:       r.Title,
	}
}

func resolveFields(raw []any) []engine.Field {
	fields := make([]engine.Field, 0, len(raw))
	for _, v := range raw {
		if f := engine.ResolveField(v); f != nil {
			fields = append(fields, f)
		}
	}
	return fields
}
