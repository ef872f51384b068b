package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/server"
	"github.com/spektr-org/seriesagg/translator"
)

func newServeCommand(cfg config.Config, tr translator.Translator) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the aggregation API over HTTP",
		Long: `Routes:
  GET  /healthz
  POST /api/series    rows or dataset + axis/metrics → chart
  POST /api/export    rows or dataset → cleaned CSV download
  POST /api/heatmap   rows or dataset + x/y/value → cells
  POST /api/matrix    rows or dataset + x/y/z → scatter points
  POST /api/kpi       rows or dataset + axis/metric → ranking

Datasets are the named sources in the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}

			app := server.New(server.Options{
				AllowOrigins: cfg.Server.AllowOrigins,
				Datasets:     server.SourceDatasets(cfg.Datasets),
				Translator:   tr,
				ExportPrefix: cfg.Export.Prefix,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Listen(addr)
			}()
			log.Printf("🚀 server started on %s (%d datasets)", addr, len(cfg.Datasets))
			cmd.Printf("listening on %s\n", addr)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			log.Println("shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(ctx); err != nil {
				log.Printf("fiber shutdown error: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
