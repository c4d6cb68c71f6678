package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/httpapi"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	Long: `Serves the analysis engine over HTTP.

Endpoints:
  POST /api/v1/analyze   Measure a batch of documents
  POST /api/v1/compare   Compare two reports
  GET  /healthz          Liveness
  GET  /metrics          Prometheus metrics

Examples:
  relic serve
  relic serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().Bool("no-cache", false, "Disable the on-disk result cache")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.Server.Addr
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}

	srv := httpapi.New(svc, httpapi.WithVersion(version), httpapi.WithLogger(slog.Default()))
	color.Cyan("Listening on %s", addr)
	return srv.ListenAndServe(cmd.Context(), addr)
}
