package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// TERMINAL — lipgloss bar rows and asciigraph line plots
// ============================================================================

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3a3a44"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// TerminalOptions controls bar rendering.
type TerminalOptions struct {
	Title    string
	BarWidth int // characters for the longest bar, default 40
}

// Bars renders one row per (bucket, dataset) pair. Bars scale against the
// largest value in the chart; hidden datasets are left out.
func Bars(chart *engine.ChartData, o TerminalOptions) string {
	width := o.BarWidth
	if width < 5 {
		width = 40
	}

	visible := make([]engine.Dataset, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		if !ds.Hidden && ds.Type != "line" {
			visible = append(visible, ds)
		}
	}

	max := 0.0
	labelWidth := 0
	for i, l := range chart.Labels {
		labelWidth = int(math.Max(float64(labelWidth), float64(lipgloss.Width(l))))
		for _, ds := range visible {
			if i < len(ds.Data) {
				max = math.Max(max, ds.Data[i])
			}
		}
	}

	var sb strings.Builder
	if o.Title != "" {
		sb.WriteString(titleStyle.Render(o.Title))
		sb.WriteString("\n")
	}

	for i, l := range chart.Labels {
		for j, ds := range visible {
			v := 0.0
			if i < len(ds.Data) {
				v = ds.Data[i]
			}
			filled := 0
			if max > 0 && v > 0 {
				filled = int(math.Round(v / max * float64(width)))
			}

			name := ""
			if j == 0 {
				name = l
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(ds.Color))
			bar := style.Render(strings.Repeat("█", filled)) +
				trackStyle.Render(strings.Repeat("░", width-filled))

			fmt.Fprintf(&sb, "%s %s %s",
				labelStyle.Render(pad(name, labelWidth)), bar, valueStyle.Render(engine.FormatNumber(v)))
			if len(visible) > 1 {
				sb.WriteString(" " + labelStyle.Render(ds.Label))
			}
			sb.WriteString("\n")
		}
	}
	if max > 0 {
		fmt.Fprintf(&sb, "%s %s\n", pad("", labelWidth), labelStyle.Render(scaleRow(max, width)))
	}
	return sb.String()
}

// scaleRow lays the 0, half and max ticks under a bar track of width cells.
func scaleRow(max float64, width int) string {
	ticks := engine.FormatTicks([]float64{0, max / 2, max}, max)
	left, mid, right := ticks[0], ticks[1], ticks[2]

	gap1 := width/2 - len(left) - len(mid)/2
	if gap1 < 1 {
		gap1 = 1
	}
	gap2 := width - len(left) - gap1 - len(mid) - len(right)
	if gap2 < 1 {
		gap2 = 1
	}
	return left + strings.Repeat(" ", gap1) + mid + strings.Repeat(" ", gap2) + right
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// KPI renders a ranking as a headline plus the runners-up.
func KPI(r *engine.KPIRanking, limit int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(r.Metric))
	sb.WriteString("\n")
	if r.Top == nil {
		sb.WriteString(valueStyle.Render(r.Display))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, e := range r.Entries {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&sb, "%2d. %s %s\n", i+1, e.Label, valueStyle.Render(e.Display))
	}
	return sb.String()
}

// LineOptions controls the asciigraph plot.
type LineOptions struct {
	Height  int // default 10
	Width   int // 0 = one column per bucket
	Caption string
}

// Line plots every visible dataset on one asciigraph canvas. It returns ""
// when there is nothing to plot.
func Line(chart *engine.ChartData, o LineOptions) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	palette := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Gray, asciigraph.DarkGray, asciigraph.Silver}

	for _, ds := range chart.Datasets {
		if ds.Hidden || len(ds.Data) == 0 {
			continue
		}
		series = append(series, ds.Data)
		colors = append(colors, palette[len(colors)%len(palette)])
	}
	if len(series) == 0 {
		return ""
	}

	height := o.Height
	if height <= 0 {
		height = 10
	}
	plotOpts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.SeriesColors(colors...),
	}
	if o.Width > 0 {
		plotOpts = append(plotOpts, asciigraph.Width(o.Width))
	}
	caption := o.Caption
	if caption == "" && len(chart.Labels) > 0 {
		caption = chart.Labels[0] + " → " + chart.Labels[len(chart.Labels)-1]
	}
	if caption != "" {
		plotOpts = append(plotOpts, asciigraph.Caption(caption))
	}
	return asciigraph.PlotMany(series, plotOpts...)
}
