package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/history"
	"github.com/panbanda/relic/internal/progress"
	"github.com/panbanda/relic/internal/remote"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [path...]",
	Aliases: []string{"a"},
	Short:   "Analyze legacy artifacts and rank them by risk",
	Long: `Discovers Perl, TIBCO BusinessWorks and Pentaho Kettle artifacts under the
given paths, measures each one and prints a triage report ranked by risk.

Examples:
  relic analyze ./legacy
  relic analyze --technology perl --level high ./scripts
  relic analyze -f json --save baseline.json .
  relic analyze --fail-on critical .          # non-zero exit for CI gates
  relic analyze acme/etl-scripts@v2.1.0       # remote repository at a tag`,
	RunE: runAnalyze,
}

func init() {
	addOutputFlags(analyzeCmd)
	analyzeCmd.Flags().String("save", "", "Save the full report as JSON for compare and trend")
	analyzeCmd.Flags().String("level", "", "Show only files at or above this level (low, medium, high, critical)")
	analyzeCmd.Flags().StringSliceP("technology", "t", nil, "Restrict to technologies (perl, tibco_bw, pentaho_kettle)")
	analyzeCmd.Flags().Int("top", 0, "Show only the N riskiest files (0 = all)")
	analyzeCmd.Flags().Float64("min-risk", 0, "Show only files with a risk score at or above this value")
	analyzeCmd.Flags().Bool("no-cache", false, "Disable the on-disk result cache")
	analyzeCmd.Flags().String("fail-on", "", "Exit with an error when any file reaches this level")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)

	techValues, _ := cmd.Flags().GetStringSlice("technology")
	techs, err := parseTechnologies(techValues)
	if err != nil {
		return err
	}
	minLevel, err := parseLevel(cmd, "level")
	if err != nil {
		return err
	}
	failOn, err := parseLevel(cmd, "fail-on")
	if err != nil {
		return err
	}
	top, _ := cmd.Flags().GetInt("top")
	minRisk, _ := cmd.Flags().GetFloat64("min-risk")
	savePath, _ := cmd.Flags().GetString("save")

	svc, err := newService(cmd)
	if err != nil {
		return err
	}

	opts := analysis.Options{Technologies: techs, Paths: paths}
	src, err := remoteSource(paths)
	if err != nil {
		return err
	}
	var rep *report.Report
	if src != nil {
		rep, err = analyzeRemote(cmd, svc, src, opts)
	} else {
		rep, err = analyzeLocal(cmd, svc, opts)
	}
	if err != nil || rep == nil {
		return err
	}

	if savePath != "" {
		if err := report.Save(savePath, rep); err != nil {
			return err
		}
		slog.Info("report saved", "path", savePath, "id", rep.ID)
	}

	selected := report.NewIndex(rep).Filter(report.Query{
		MinLevel:     minLevel,
		Technologies: techs,
		MinRisk:      minRisk,
		Limit:        top,
	})

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(report.NewView(rep, selected)); err != nil {
		return err
	}

	if failOn != "" {
		if n := countAtOrAbove(rep.Files, failOn); n > 0 {
			return fmt.Errorf("%d file(s) at or above %s", n, failOn)
		}
	}
	return nil
}

// analyzeLocal discovers and analyzes files on disk. It returns a nil report
// when nothing was found.
func analyzeLocal(cmd *cobra.Command, svc *analysis.Service, opts analysis.Options) (*report.Report, error) {
	files, err := svc.Discover(opts.Paths, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil, nil
	}

	tracker := progress.NewTracker("Analyzing artifacts...", len(files))
	opts.OnProgress = tracker.Tick
	rep, err := svc.AnalyzeFiles(cmd.Context(), files, opts)
	if err != nil {
		tracker.FinishError(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSkipped(len(rep.Skipped))
	return rep, nil
}

// remoteSource returns the repository reference when the only path is one.
func remoteSource(paths []string) (*remote.Source, error) {
	if len(paths) != 1 {
		return nil, nil
	}
	return remote.Parse(paths[0])
}

// analyzeRemote clones src into memory and analyzes its artifacts at the
// requested ref.
func analyzeRemote(cmd *cobra.Command, svc *analysis.Service, src *remote.Source, opts analysis.Options) (*report.Report, error) {
	spinner := progress.NewSpinner("Cloning " + src.URL + "...")
	repo, err := history.Clone(cmd.Context(), src.URL, nil)
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	snap, err := repo.Resolve(src.Ref)
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	blobs, err := repo.Files(cmd.Context(), snap.SHA, func(p string) bool { return !appConfig.ShouldExclude(p) })
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	spinner.FinishSuccess()

	opts.Paths = []string{src.String()}
	rep, err := svc.AnalyzeDocuments(cmd.Context(), documents(blobs, opts.Technologies), opts)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return rep, nil
}

func countAtOrAbove(files []models.FileMetrics, level models.Level) int {
	n := 0
	for i := range files {
		if files[i].OverallLevel().Rank() >= level.Rank() {
			n++
		}
	}
	return n
}
