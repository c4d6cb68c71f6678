package main

import (
	"fmt"

	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <base.json> <head.json>",
	Short: "Compare two saved reports",
	Long: `Compares two reports written by "relic analyze --save". Files are matched
by path, then by content fingerprint to detect renames.

Examples:
  relic compare baseline.json current.json
  relic compare --regressions-only --fail-on-regression base.json head.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	addOutputFlags(compareCmd)
	compareCmd.Flags().Bool("regressions-only", false, "Show only files whose risk went up")
	compareCmd.Flags().Bool("fail-on-regression", false, "Exit with an error when any file regressed")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	base, err := report.Load(args[0])
	if err != nil {
		return err
	}
	head, err := report.Load(args[1])
	if err != nil {
		return err
	}

	c := compare.Reports(base, head)
	if only, _ := cmd.Flags().GetBool("regressions-only"); only {
		c.Files = c.Regressions()
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(compare.NewView(c)); err != nil {
		return err
	}

	if fail, _ := cmd.Flags().GetBool("fail-on-regression"); fail && c.Regressed > 0 {
		return fmt.Errorf("%d file(s) regressed", c.Regressed)
	}
	return nil
}
