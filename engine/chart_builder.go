package engine

import (
	"math"
	"strings"

	"github.com/samber/lo"
)

// ============================================================================
// CHART BUILDER — Produces ChartData from an ordered SeriesTable
// ============================================================================

// TotalLabel is the label of the appended total bucket.
const TotalLabel = "Total"

// LineColor is used for every line overlay.
const LineColor = "#a53241"

var (
	greyRamp      = []string{"#888888", "#aaaaaa", "#bbbbbb"}
	multiPalette  = append([]string{"#62626e", "#f04b55"}, greyRamp...)
	singlePalette = append([]string{"#f04b55"}, greyRamp...)
	hoverColorMap = map[string]string{"#f04b55": "#af3241", "#62626e": "#2d2d37"}
)

// Palette returns the bar colours for n series: dark grey and red lead when
// several series share the chart, red leads a single series.
func Palette(n int) []string {
	if n > 1 {
		return append([]string(nil), multiPalette...)
	}
	return append([]string(nil), singlePalette...)
}

// HoverColor returns the darker hover shade of c, or c itself.
func HoverColor(c string) string {
	if h, ok := hoverColorMap[strings.ToLower(c)]; ok {
		return h
	}
	return c
}

// colorAt picks palette[i], reusing the last colour once the ramp runs out.
func colorAt(palette []string, i int) string {
	if len(palette) == 0 {
		return ""
	}
	if i < len(palette) {
		return palette[i]
	}
	return palette[len(palette)-1]
}

// BuildChart produces ChartData from an ordered, normalized table.
func BuildChart(t *SeriesTable, opts ...Option) *ChartData {
	return buildChart(t, applyOptions(opts))
}

func buildChart(t *SeriesTable, cfg *config) *ChartData {
	roundValue := func(v float64) float64 {
		if cfg.Round {
			return math.Round(v)
		}
		return v
	}

	palette := cfg.Palette
	if len(palette) == 0 {
		palette = Palette(len(t.Metrics))
	}

	chart := &ChartData{
		Labels:   append([]string(nil), t.Buckets...),
		Datasets: make([]Dataset, 0, len(t.Metrics)+len(cfg.LineMetrics)),
	}

	for m, metric := range t.Metrics {
		data := lo.Map(t.Values[m], func(v float64, _ int) float64 { return roundValue(v) })
		if cfg.TotalBucket {
			data = append(data, roundValue(t.Total(m)))
		}
		color := colorAt(palette, m)
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:      metric.Title(),
			Metric:     metric.Name(),
			Data:       data,
			Type:       "bar",
			Color:      color,
			HoverColor: HoverColor(color),
			Order:      1,
			Hidden:     lo.Contains(cfg.Hidden, metric.Name()),
		})
	}

	for _, line := range cfg.LineMetrics {
		src := t.Series(line.Name())
		if src == nil {
			src = make([]float64, len(t.Buckets))
		}
		data := lo.Map(src, func(v float64, _ int) float64 { return roundValue(v) })
		if cfg.TotalBucket {
			data = append(data, roundValue(lo.Sum(src)))
		}
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:      line.Title(),
			Metric:     line.Name(),
			Data:       data,
			Type:       "line",
			Color:      LineColor,
			HoverColor: LineColor,
			Order:      0,
		})
	}

	chart.Totals = StackedTotals(t, cfg.Hidden...)
	if cfg.Round {
		for i := range chart.Totals {
			chart.Totals[i].Total = math.Round(chart.Totals[i].Total)
		}
	}

	if cfg.TotalBucket {
		chart.Labels = append(chart.Labels, TotalLabel)
	}
	return chart
}
