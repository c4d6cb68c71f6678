package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/panbanda/relic/internal/output"
	"github.com/panbanda/relic/internal/scanner"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-measure artifacts as they change",
	Long: `Watches a directory tree and prints one summary line for every artifact
that is written or created, after a short debounce.

Examples:
  relic watch ./legacy
  relic watch --technology perl --debounce 2s .`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before changed files are analyzed")
	watchCmd.Flags().StringSliceP("technology", "t", nil, "Restrict to technologies (perl, tibco_bw, pentaho_kettle)")
	watchCmd.Flags().Bool("no-cache", false, "Disable the on-disk result cache")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := getPaths(args)[0]
	debounce, _ := cmd.Flags().GetDuration("debounce")
	techValues, _ := cmd.Flags().GetStringSlice("technology")
	techs, err := parseTechnologies(techValues)
	if err != nil {
		return err
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}

	w, err := watch.NewWatcher(path, appConfig, debounce, scanner.WithTechnologies(techs...))
	if err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	w.SetOutput(out)
	w.SetCallback(func(f scanner.File) {
		fm, err := analyzeChanged(svc, f)
		if err != nil {
			slog.Warn("analysis failed", "path", f.Path, "error", err)
			return
		}
		printChange(out, fm, time.Now())
	})

	if err := w.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func analyzeChanged(svc *analysis.Service, f scanner.File) (models.FileMetrics, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return models.FileMetrics{}, err
	}
	return svc.AnalyzeSource(models.SourceDocument{
		Path:       f.Path,
		Content:    string(content),
		Technology: f.Technology,
	})
}

// printChange writes the one-line summary for a re-analyzed file.
func printChange(w io.Writer, fm models.FileMetrics, at time.Time) {
	level := string(fm.OverallLevel())
	fmt.Fprintf(w, "%s %-8s %-50s cc=%d cog=%d depth=%d mi=%.2f risk=%.2f\n",
		at.Format("15:04:05"),
		output.LevelColor(level, level),
		truncate(fm.Path, 50),
		fm.Metrics.CyclomaticComplexity,
		fm.Metrics.CognitiveComplexity,
		fm.Metrics.NestingDepth,
		fm.Metrics.MaintainabilityIndex,
		fm.RiskScore,
	)
}
