package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// HTML — go-echarts pages for chart, heatmap and matrix output
// ============================================================================
// The engine output is already ordered, normalized and coloured; these
// renderers only map it onto echarts series.
// ============================================================================

// HTMLOptions controls the page around a chart.
type HTMLOptions struct {
	Title   string
	Width   string // CSS width, default "100%"
	Height  string // CSS height, default "500px"
	Stacked bool   // stack bar series and label each stack with its total
}

func (o HTMLOptions) init() opts.Initialization {
	width, height := o.Width, o.Height
	if width == "" {
		width = "100%"
	}
	if height == "" {
		height = "500px"
	}
	return opts.Initialization{PageTitle: o.Title, Width: width, Height: height}
}

// ChartHTML writes chart as a bar chart with any line datasets overlaid.
func ChartHTML(w io.Writer, chart *engine.ChartData, o HTMLOptions) error {
	bar := BuildBar(chart, o)
	return bar.Render(w)
}

// BuildBar maps ChartData onto a go-echarts bar chart. Line datasets become
// an overlapping line chart on the same category axis.
func BuildBar(chart *engine.ChartData, o HTMLOptions) *charts.Bar {
	selected := make(map[string]bool, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		selected[ds.Label] = !ds.Hidden
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.init()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Selected: selected}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Formatter: opts.FuncOpts(tickFormatter(chart))},
		}),
	)
	xLabels := axisLabels(chart.Labels)
	bar.SetXAxis(xLabels)

	line := charts.NewLine()
	line.SetXAxis(xLabels)
	hasLine := false

	for _, ds := range chart.Datasets {
		switch ds.Type {
		case "line":
			hasLine = true
			data := make([]opts.LineData, len(ds.Data))
			for i, v := range ds.Data {
				data[i] = opts.LineData{Value: v}
			}
			line.AddSeries(ds.Label, data,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: ds.Color}),
			)
		default:
			data := make([]opts.BarData, len(ds.Data))
			for i, v := range ds.Data {
				data[i] = opts.BarData{Value: v}
			}
			seriesOpts := []charts.SeriesOpts{
				charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
			}
			if o.Stacked {
				seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "stack"}))
			}
			bar.AddSeries(ds.Label, data, seriesOpts...)
		}
	}

	if o.Stacked && len(chart.Totals) > 0 {
		hasLine = true
		data := make([]opts.LineData, len(chart.Labels))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		for i, st := range chart.Totals {
			if i < len(data) && st.LastSegment >= 0 {
				data[i] = opts.LineData{Value: st.Total}
			}
		}
		line.AddSeries(engine.TotalLabel, data,
			charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	}

	if hasLine {
		bar.Overlap(line)
	}
	return bar
}

// tickFormatter abbreviates y-axis ticks with the same units as
// engine.AbbreviateTick.
func tickFormatter(chart *engine.ChartData) string {
	max := 0.0
	for _, ds := range chart.Datasets {
		for _, v := range ds.Data {
			max = math.Max(max, v)
		}
	}
	unit, divisor := engine.TickScale(max)
	if unit == "" {
		return "function (v) { return v; }"
	}
	return fmt.Sprintf("function (v) { return (v / %s).toFixed(0) + '%s'; }",
		strconv.FormatFloat(divisor, 'f', -1, 64), unit)
}

// axisLabels wraps category labels onto at most two lines.
func axisLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.Join(engine.WrapLabel(l), "\n")
	}
	return out
}

// ============================================================================
// HEATMAP
// ============================================================================

// HeatmapHTML writes a heatmap page.
func HeatmapHTML(w io.Writer, hm *engine.Heatmap, o HTMLOptions) error {
	return BuildHeatMap(hm, o).Render(w)
}

// BuildHeatMap maps a Heatmap onto a go-echarts heatmap. The colour scale
// runs between the same two colours the engine uses for cell fills.
func BuildHeatMap(hm *engine.Heatmap, o HTMLOptions) *charts.HeatMap {
	xIndex := indexOf(hm.XLabels)
	yIndex := indexOf(hm.YLabels)

	data := make([]opts.HeatMapData, 0, len(hm.Cells))
	for _, c := range hm.Cells {
		data = append(data, opts.HeatMapData{
			Name:  c.Label,
			Value: [3]interface{}{xIndex[c.X], yIndex[c.Y], c.Value},
		})
	}

	max := hm.Max
	if max == 0 {
		max = 1
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(o.init()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      hm.YLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max),
			InRange: &opts.VisualMapInRange{
				Color: []string{engine.HeatmapLow, engine.HeatmapHigh},
			},
		}),
	)
	heatmap.SetXAxis(hm.XLabels).AddSeries("Value", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return heatmap
}

func indexOf(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return idx
}

// ============================================================================
// MATRIX
// ============================================================================

const (
	minSymbol = 8
	maxSymbol = 32
)

// MatrixHTML writes a scatter page.
func MatrixHTML(w io.Writer, m *engine.Matrix, o HTMLOptions) error {
	return BuildScatter(m, o).Render(w)
}

// BuildScatter maps a Matrix onto a go-echarts scatter chart. Z scales the
// symbol size between minSymbol and maxSymbol.
func BuildScatter(m *engine.Matrix, o HTMLOptions) *charts.Scatter {
	zMin, zMax := math.Inf(1), math.Inf(-1)
	for _, p := range m.Points {
		zMin = math.Min(zMin, p.Z)
		zMax = math.Max(zMax, p.Z)
	}

	data := make([]opts.ScatterData, len(m.Points))
	for i, p := range m.Points {
		size := minSymbol
		if zMax > zMin {
			size = minSymbol + int(math.Round((p.Z-zMin)/(zMax-zMin)*(maxSymbol-minSymbol)))
		}
		data[i] = opts.ScatterData{
			Name:       p.Label,
			Value:      []interface{}{p.X, p.Y, p.Z},
			SymbolSize: size,
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(o.init()),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: m.X.Min, Max: m.X.Max}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: m.Y.Min, Max: m.Y.Max}),
	)
	scatter.AddSeries("Points", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: engine.HeatmapHigh}),
	)
	return scatter
}
