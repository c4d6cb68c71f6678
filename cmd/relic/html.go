package main

import (
	"slices"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/htmlreport"
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
)

var htmlCmd = &cobra.Command{
	Use:   "html <report.json>...",
	Short: "Render saved reports as an HTML page",
	Long: `Renders the most recent of the given reports as a self-contained HTML page.
With more than one report, a trend section covering all of them is added.

Examples:
  relic html baseline.json -o triage.html
  relic html reports/*.json --top 100 -o triage.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHTML,
}

func init() {
	htmlCmd.Flags().StringP("output", "o", "relic-report.html", "Output file path")
	htmlCmd.Flags().Int("top", htmlreport.DefaultTop, "Number of riskiest files to list")

	rootCmd.AddCommand(htmlCmd)
}

func runHTML(cmd *cobra.Command, args []string) error {
	reports := make([]*report.Report, 0, len(args))
	for _, path := range args {
		r, err := report.Load(path)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	latest := slices.MaxFunc(reports, func(a, b *report.Report) int {
		return a.GeneratedAt.Compare(b.GeneratedAt)
	})

	top, _ := cmd.Flags().GetInt("top")
	data := htmlreport.NewData(latest, version, top)
	if len(reports) > 1 {
		data.Trend = compare.Series(reports)
	}

	renderer, err := htmlreport.NewRenderer()
	if err != nil {
		return err
	}
	outputPath := getOutputFile(cmd)
	if err := renderer.RenderToFile(outputPath, data); err != nil {
		return err
	}
	color.Green("Report written to %s", outputPath)
	return nil
}
