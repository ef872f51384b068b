package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/engine"
	"github.com/spektr-org/seriesagg/render"
	"github.com/spektr-org/seriesagg/schema"
	"github.com/spektr-org/seriesagg/translator"
)

const seriesFormats = "json, pretty, csv, table, bars, line, html"

// seriesFlags describe one chart.
type seriesFlags struct {
	axis        string
	metrics     []string
	lines       []string
	granularity string
	ordering    string
	reverse     bool
	normalize   string
	round       bool
	total       bool
	weekRange   bool
	limit       int
	hidden      []string
	palette     []string
	filters     []string
	title       string
	lang        string
	stacked     bool
}

func (f *seriesFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.axis, "axis", "x", "", "axis field (empty = discovered from the data)")
	fl.StringSliceVarP(&f.metrics, "metric", "m", nil, "metric field (repeatable)")
	fl.StringSliceVar(&f.lines, "line", nil, "metric drawn as a line overlay (repeatable)")
	fl.StringVarP(&f.granularity, "granularity", "g", "", "hour, hour_group, day, week, month, total or default")
	fl.StringVar(&f.ordering, "ordering", "", "insertion, generic, weekday, month, hour or hour_group")
	fl.BoolVar(&f.reverse, "reverse", false, "reverse the bucket order")
	fl.StringVar(&f.normalize, "normalize", "", "raw, percent_global or percent_bucket")
	fl.BoolVar(&f.round, "round", false, "round values to integers")
	fl.BoolVar(&f.total, "total", false, "append a Total bucket")
	fl.BoolVar(&f.weekRange, "week-range", false, "label weeks with their date range")
	fl.IntVar(&f.limit, "limit", 0, "keep only the first N metrics")
	fl.StringSliceVar(&f.hidden, "hide", nil, "metric left out of stacked totals (repeatable)")
	fl.StringSliceVar(&f.palette, "palette", nil, "bar colours in series order")
	fl.StringArrayVar(&f.filters, "filter", nil, "field=value[,value...] (repeatable, AND across fields)")
	fl.StringVar(&f.title, "title", "", "chart title")
	fl.StringVar(&f.lang, "lang", "", "translate labels into this language (needs SERIESAGG_TRANSLATE_URL)")
	fl.BoolVar(&f.stacked, "stacked", false, "stack bars in html output")
}

// request builds the engine request. Without an axis the discovered
// suggestion fills in the axis, metrics and granularity.
func (f *seriesFlags) request(view engine.RowView) (engine.SeriesRequest, []engine.Option, error) {
	var req engine.SeriesRequest
	var opts []engine.Option

	if f.axis == "" {
		sch, err := schema.DiscoverFromView(view)
		if err != nil {
			return req, nil, fmt.Errorf("discovering axis: %w", err)
		}
		suggested, suggestedOpts, ok := sch.Request()
		if !ok {
			return req, nil, fmt.Errorf("no axis given and none could be discovered")
		}
		log.Printf("🔍 suggested axis=%s metrics=%v", suggested.Axis.Name(), engine.FieldNames(suggested.Metrics))
		req, opts = suggested, suggestedOpts
	} else {
		req.Axis = engine.Named(f.axis)
	}

	if f.granularity != "" {
		req.Granularity = engine.ParseGranularity(f.granularity)
	}
	if len(f.metrics) > 0 {
		req.Metrics = namedFields(f.metrics)
	}
	if f.title != "" {
		req.Title = f.title
	}

	filters, err := parseFilters(f.filters)
	if err != nil {
		return req, nil, err
	}
	req.Filters = filters

	if f.ordering != "" {
		opts = append(opts, engine.WithOrdering(engine.ParseOrderingPolicy(f.ordering)))
	}
	if f.reverse {
		opts = append(opts, engine.WithReverse())
	}
	if f.normalize != "" {
		opts = append(opts, engine.WithNormalization(engine.ParseNormalizationMode(f.normalize)))
	}
	if f.round {
		opts = append(opts, engine.WithRounding())
	}
	if f.total {
		opts = append(opts, engine.WithTotalBucket())
	}
	if f.weekRange {
		opts = append(opts, engine.WithWeekRange())
	}
	if f.limit > 0 {
		opts = append(opts, engine.WithMetricLimit(f.limit))
	}
	if len(f.hidden) > 0 {
		opts = append(opts, engine.WithHiddenMetrics(f.hidden...))
	}
	if len(f.lines) > 0 {
		opts = append(opts, engine.WithLineMetrics(namedFields(f.lines)...))
	}
	if len(f.palette) > 0 {
		opts = append(opts, engine.WithPalette(f.palette...))
	}
	return req, opts, nil
}

func namedFields(names []string) []engine.Field {
	fields := make([]engine.Field, 0, len(names))
	for _, n := range names {
		if f := engine.ResolveField(strings.TrimSpace(n)); f != nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// parseFilters reads "field=a,b" pairs. Repeating a field adds values.
func parseFilters(raw []string) (engine.Filters, error) {
	filters := engine.Filters{Fields: map[string][]string{}}
	for _, r := range raw {
		field, values, ok := strings.Cut(r, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return filters, fmt.Errorf("invalid filter %q, want field=value", r)
		}
		for _, v := range strings.Split(values, ",") {
			filters.Fields[field] = append(filters.Fields[field], strings.TrimSpace(v))
		}
	}
	return filters, nil
}

// runSeries executes one chart and writes it in the requested format.
func runSeries(ctx context.Context, w io.Writer, view engine.RowView, f *seriesFlags, format string, tr translator.Translator) error {
	req, opts, err := f.request(view)
	if err != nil {
		return err
	}

	res, err := engine.Execute(ctx, req, view, opts...)
	if err != nil {
		return err
	}
	if f.lang != "" {
		if tr == nil {
			log.Printf("⚠️ --lang ignored: no translation endpoint configured")
		} else {
			res.Chart = translator.TranslateChart(ctx, tr, res.Chart, f.lang)
		}
	}

	title := res.Title
	if title == "" {
		title = req.Axis.Title()
	}

	switch format {
	case "csv":
		return writeChartCSV(w, req.Axis.Title(), res.Chart)
	case "table":
		return writeTableText(w, res.Table)
	case "bars":
		_, err = io.WriteString(w, render.Bars(res.Chart, render.TerminalOptions{Title: title}))
		return err
	case "line":
		_, err = fmt.Fprintln(w, render.Line(res.Chart, render.LineOptions{Caption: title}))
		return err
	case "html":
		return render.ChartHTML(w, res.Chart, render.HTMLOptions{Title: title, Stacked: f.stacked})
	case "json", "pretty":
		return writeJSON(w, res, format)
	}
	return fmt.Errorf("unknown format %q (want %s)", format, seriesFormats)
}

func newSeriesCommand(cfg config.Config, tr translator.Translator) *cobra.Command {
	var (
		in     inputFlags
		out    outputFlags
		series seriesFlags
	)
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Aggregate rows into a categorical series chart",
		Example: `  seriesagg series -f visits.csv -x visit_date -g week -m shoppers --format bars
  seriesagg series -f sales.db -q "SELECT * FROM sales" -x dow -m amount --ordering weekday --format csv
  seriesagg series -f visits.csv -x store -m a -m b --normalize percent_bucket --stacked --format html -o chart.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			w, closeOut, err := out.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			return runSeries(cmd.Context(), w, view, &series, out.format, tr)
		},
	}
	in.register(cmd)
	out.register(cmd, "pretty", seriesFormats)
	series.register(cmd)
	return cmd
}
