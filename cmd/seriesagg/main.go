package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/translator"
)

// ============================================================================
// SERIESAGG CLI — query rows in, chart-ready series out
// ============================================================================

const version = "0.3.0"

func main() {
	if os.Getenv("SERIESAGG_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	tr, err := newTranslator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening translation cache: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(cfg, tr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg config.Config, tr translator.Translator) *cobra.Command {
	root := &cobra.Command{
		Use:     "seriesagg",
		Short:   "Aggregate query result rows into chart-ready categorical series.",
		Version: version,
		Long: `seriesagg turns tabular query results (CSV, JSON, SQLite or Postgres)
into ordered, normalized series for bar/line charts, heatmaps, scatter
matrices and KPI cards, and cleans result rows for CSV export.

Environment:
  SERIESAGG_DEBUG          log to stderr
  SERIESAGG_ADDR           listen address for 'serve'
  SERIESAGG_TRANSLATE_URL  translation service endpoint (enables --lang)
  SERIESAGG_TRANSLATE_KEY  translation service API key
  SERIESAGG_CACHE_PATH     translation cache file
  SERIESAGG_EXPORT_PREFIX  export file name prefix`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newSeriesCommand(cfg, tr),
		newExportCommand(cfg),
		newHeatmapCommand(cfg),
		newMatrixCommand(cfg),
		newKPICommand(cfg),
		newDiscoverCommand(cfg),
		newServeCommand(cfg, tr),
		newWatchCommand(cfg, tr),
	)
	return root
}

// newTranslator builds the one translator of the process. Without an
// endpoint there is nothing to translate with and labels stay as they are.
func newTranslator(cfg config.Config) (translator.Translator, error) {
	if cfg.Translate.Endpoint == "" {
		return nil, nil
	}
	cache, err := translator.OpenFileCache(cfg.Translate.CachePath)
	if err != nil {
		return nil, err
	}
	log.Printf("🔄 translation cache: %s", cache.Path())
	return translator.NewHTTP(translator.Config{
		APIKey:   cfg.Translate.APIKey,
		Endpoint: cfg.Translate.Endpoint,
		Source:   cfg.Translate.Source,
	}, cache), nil
}
