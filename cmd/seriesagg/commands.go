package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/engine"
	"github.com/spektr-org/seriesagg/export"
	"github.com/spektr-org/seriesagg/render"
	"github.com/spektr-org/seriesagg/schema"
)

func newExportCommand(cfg config.Config) *cobra.Command {
	var (
		in      inputFlags
		columns []string
		name    string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write rows as a cleaned, de-duplicated CSV",
		Long: `Technical columns (agg, sort, tftf) are dropped, empty and duplicate
columns removed, and the remaining headers renamed for people. With --out
pointing at a directory the file is named <prefix>-<name>-<date>.csv.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				path := out
				if info, err := os.Stat(out); err == nil && info.IsDir() {
					if name == "" {
						name = "export"
					}
					path = filepath.Join(out, export.FileName(cfg.Export.Prefix, name, time.Now())+".csv")
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				w = f
				log.Printf("📄 export: writing %s", path)
			}
			return export.ExportView(w, view, columns...)
		},
	}
	in.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to consider, in order (default: all)")
	cmd.Flags().StringVar(&name, "name", "", "chart name used in generated file names")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default stdout)")
	return cmd
}

func newHeatmapCommand(cfg config.Config) *cobra.Command {
	var (
		in          inputFlags
		out         outputFlags
		x, y, value string
		title       string
	)
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Sum a value over two categorical axes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			hm := engine.BuildHeatmap(view, engine.Named(x), engine.Named(y), engine.Named(value))

			w, closeOut, err := out.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			if out.format == "html" {
				return render.HeatmapHTML(w, hm, render.HTMLOptions{Title: title})
			}
			return writeJSON(w, hm, out.format)
		},
	}
	in.register(cmd)
	out.register(cmd, "pretty", "json, pretty, html")
	cmd.Flags().StringVar(&x, "x", "", "x axis field")
	cmd.Flags().StringVar(&y, "y", "", "y axis field")
	cmd.Flags().StringVar(&value, "value", "", "value field")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	markRequired(cmd, "x", "y", "value")
	return cmd
}

func newMatrixCommand(cfg config.Config) *cobra.Command {
	var (
		in             inputFlags
		out            outputFlags
		x, y, z, label string
		title          string
	)
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Plot rows as scatter points with axis bounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			var labelField engine.Field
			if label != "" {
				labelField = engine.Named(label)
			}
			m := engine.BuildMatrix(view, engine.Named(x), engine.Named(y), engine.Named(z), labelField)

			w, closeOut, err := out.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			if out.format == "html" {
				return render.MatrixHTML(w, m, render.HTMLOptions{Title: title})
			}
			return writeJSON(w, m, out.format)
		},
	}
	in.register(cmd)
	out.register(cmd, "pretty", "json, pretty, html")
	cmd.Flags().StringVar(&x, "x", "", "x field")
	cmd.Flags().StringVar(&y, "y", "", "y field")
	cmd.Flags().StringVar(&z, "z", "", "size field")
	cmd.Flags().StringVar(&label, "label", "", "point label field")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	markRequired(cmd, "x", "y", "z")
	return cmd
}

// kpiOutput is the JSON shape of the kpi command.
type kpiOutput struct {
	Ranking *engine.KPIRanking `json:"ranking"`
	Uplift  []engine.KPIEntry  `json:"uplift,omitempty"`
}

func newKPICommand(cfg config.Config) *cobra.Command {
	var (
		in           inputFlags
		out          outputFlags
		axis, metric string
		reference    string
		upliftOf     []string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Rank axis values by a metric, optionally with uplift against a reference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			res := kpiOutput{Ranking: engine.RankKPI(view, engine.Named(axis), engine.Named(metric))}
			if reference != "" && view.Len() > 0 {
				first := engine.Materialize(view)[0]
				res.Uplift = engine.UpliftSummary(first, namedFields(upliftOf), engine.Named(reference))
			}

			w, closeOut, err := out.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			if out.format == "text" {
				_, err := io.WriteString(w, render.KPI(res.Ranking, limit))
				if err != nil {
					return err
				}
				for _, e := range res.Uplift {
					fmt.Fprintf(w, "%s: %s\n", e.Label, e.Display)
				}
				return nil
			}
			return writeJSON(w, res, out.format)
		},
	}
	in.register(cmd)
	out.register(cmd, "text", "text, json, pretty")
	cmd.Flags().StringVarP(&axis, "axis", "x", "", "axis field to rank")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "metric to rank by")
	cmd.Flags().StringVar(&reference, "reference", "", "reference metric for uplift percentages")
	cmd.Flags().StringSliceVar(&upliftOf, "uplift", nil, "metrics compared against --reference")
	cmd.Flags().IntVar(&limit, "limit", 5, "entries shown in text output (0 = all)")
	markRequired(cmd, "axis", "metric")
	return cmd
}

func newDiscoverCommand(cfg config.Config) *cobra.Command {
	var (
		in        inputFlags
		out       outputFlags
		name      string
		recovered []string
		sample    int
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Infer dimensions, measures and a suggested chart from the data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := in.view(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			opts := schema.DefaultDiscoverOptions()
			opts.Name = name
			opts.RecoverColumns = recovered
			opts.Source = fmt.Sprint(in.paths(cfg))
			if sample > 0 {
				opts.SampleSize = sample
			}

			sch, err := schema.DiscoverFromView(view, opts)
			if err != nil {
				return err
			}
			log.Printf("🔍 discover: %s (%d dims, %d measures, %d skipped)",
				sch.Name, len(sch.Dimensions), len(sch.Measures), len(sch.SkippedColumns))

			w, closeOut, err := out.writer(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			return writeJSON(w, sch, out.format)
		},
	}
	in.register(cmd)
	out.register(cmd, "pretty", "json, pretty")
	cmd.Flags().StringVar(&name, "name", "", "dataset name")
	cmd.Flags().StringSliceVar(&recovered, "recover", nil, "skipped columns to keep as dimensions")
	cmd.Flags().IntVar(&sample, "sample", 0, "rows sampled per column (default 1000)")
	return cmd
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}
