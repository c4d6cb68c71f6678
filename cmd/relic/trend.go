package main

import (
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
)

var trendCmd = &cobra.Command{
	Use:   "trend <report.json>...",
	Short: "Show how risk moves across saved reports",
	Long: `Orders saved reports by generation time and fits a linear trend to mean
maintainability, cyclomatic complexity and risk.

Examples:
  relic trend reports/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrend,
}

func init() {
	addOutputFlags(trendCmd)

	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	reports := make([]*report.Report, 0, len(args))
	for _, path := range args {
		r, err := report.Load(path)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(compare.NewTrendView(compare.Series(reports)))
}
