package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/engine"
	"github.com/spektr-org/seriesagg/helpers"
)

var errNoInput = errors.New("no input: pass --file, --dsn or --dataset")

// inputFlags select the rows a command runs on.
type inputFlags struct {
	files    []string
	jsonPath string
	dsn      string
	query    string
	dataset  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.files, "file", "f", nil, "CSV, JSON or SQLite file (repeatable, results are concatenated)")
	cmd.Flags().StringVar(&f.jsonPath, "json-path", "", "gjson path to the row array inside JSON files")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "database DSN (postgres://... or a SQLite path)")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "SQL query for --dsn or SQLite files")
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "dataset name from the config file")
}

// sources lists what to load, in order.
func (f *inputFlags) sources(cfg config.Config) ([]helpers.Source, error) {
	var sources []helpers.Source
	if f.dataset != "" {
		ds, ok := cfg.Datasets[f.dataset]
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q in %s", f.dataset, config.ConfigPath())
		}
		sources = append(sources, ds...)
	}
	for _, path := range f.files {
		src := helpers.Source{Path: path, JSONPath: f.jsonPath}
		if isSQLite(path) {
			src.Query = f.query
		}
		sources = append(sources, src)
	}
	if f.dsn != "" {
		sources = append(sources, helpers.Source{DSN: f.dsn, Query: f.query})
	}
	if len(sources) == 0 {
		return nil, errNoInput
	}
	return sources, nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// paths lists the local files behind the input, for watching.
func (f *inputFlags) paths(cfg config.Config) []string {
	var paths []string
	for _, src := range cfg.Datasets[f.dataset] {
		if src.Path != "" {
			paths = append(paths, src.Path)
		}
	}
	return append(paths, f.files...)
}

func (f *inputFlags) view(ctx context.Context, cfg config.Config) (engine.RowView, error) {
	sources, err := f.sources(cfg)
	if err != nil {
		return nil, err
	}
	return helpers.LoadAll(ctx, sources...)
}

// outputFlags choose where and how results are written.
type outputFlags struct {
	format string
	out    string
}

func (f *outputFlags) register(cmd *cobra.Command, def string, formats string) {
	cmd.Flags().StringVar(&f.format, "format", def, "output format: "+formats)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write output to file instead of stdout")
}

// writer returns the output destination and its closer.
func (f *outputFlags) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.out == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(f.out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, file.Close, nil
}
