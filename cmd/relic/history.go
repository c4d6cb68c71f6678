package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/relic/internal/history"
	"github.com/panbanda/relic/internal/progress"
	"github.com/panbanda/relic/internal/remote"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Replay risk over a git repository's past",
	Long: `Samples one commit per week or month, analyzes the artifacts as they
existed in that commit and prints the resulting trend. The working tree is
never checked out or modified.

Examples:
  relic history .
  relic history --period weekly --since 3m --snap ./legacy
  relic history acme/etl-scripts              # cloned into memory
  relic history --save-dir snapshots/ -f json .`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	addOutputFlags(historyCmd)
	historyCmd.Flags().String("period", string(history.Monthly), "Sampling period: weekly or monthly")
	historyCmd.Flags().String("since", "1y", "How far back to look (e.g. 3m, 1y, 2w, 90d)")
	historyCmd.Flags().Bool("snap", false, "Align samples to Mondays or the first of the month")
	historyCmd.Flags().StringSliceP("technology", "t", nil, "Restrict to technologies (perl, tibco_bw, pentaho_kettle)")
	historyCmd.Flags().String("save-dir", "", "Save each sampled report as JSON into this directory")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := getPaths(args)[0]

	periodValue, _ := cmd.Flags().GetString("period")
	period, err := history.ParsePeriod(periodValue)
	if err != nil {
		return err
	}
	sinceValue, _ := cmd.Flags().GetString("since")
	since, err := history.ParseSince(sinceValue)
	if err != nil {
		return err
	}
	snap, _ := cmd.Flags().GetBool("snap")
	techValues, _ := cmd.Flags().GetStringSlice("technology")
	techs, err := parseTechnologies(techValues)
	if err != nil {
		return err
	}
	saveDir, _ := cmd.Flags().GetString("save-dir")

	repo, err := openRepo(cmd, path)
	if err != nil {
		return err
	}
	snapshots, err := repo.Snapshots(period, since, snap, time.Now())
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		color.Yellow("No commits found in the specified time range")
		return nil
	}

	svc := analysis.New(analysis.WithConfig(appConfig), analysis.WithLogger(slog.Default()))
	keep := func(p string) bool { return !appConfig.ShouldExclude(p) }

	tracker := progress.NewTracker("Replaying history...", len(snapshots))
	reports := make([]*report.Report, 0, len(snapshots))
	for _, s := range snapshots {
		blobs, err := repo.Files(cmd.Context(), s.SHA, keep)
		if err != nil {
			tracker.FinishError(err)
			return fmt.Errorf("read %s: %w", s.Short(), err)
		}

		rep, err := svc.AnalyzeDocuments(cmd.Context(), documents(blobs, techs), analysis.Options{
			Paths: []string{path + "@" + s.Short()},
			ID:    s.Short(),
			Now:   func() time.Time { return s.Date },
		})
		if err != nil {
			tracker.FinishError(err)
			return fmt.Errorf("analyze %s: %w", s.Short(), err)
		}
		tracker.Tick()

		if saveDir != "" {
			out := filepath.Join(saveDir, s.Date.UTC().Format("2006-01-02")+"-"+s.Short()+".json")
			if err := report.Save(out, rep); err != nil {
				tracker.FinishError(err)
				return err
			}
		}
		reports = append(reports, rep)
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(compare.NewTrendView(compare.Series(reports)))
}

// openRepo opens a local repository, or clones a remote reference into memory.
func openRepo(cmd *cobra.Command, path string) (*history.Repo, error) {
	src, err := remote.Parse(path)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return history.Open(path)
	}
	slog.Info("cloning repository", "url", src.URL)
	return history.Clone(cmd.Context(), src.URL, nil)
}

// documents keeps the blobs that are recognised artifacts of the wanted
// technologies (all known ones when techs is empty).
func documents(blobs []history.Blob, techs []models.Technology) []models.SourceDocument {
	docs := make([]models.SourceDocument, 0, len(blobs))
	for _, b := range blobs {
		tech := models.DetectTechnology(b.Path, b.Content)
		if tech == models.TechUnknown {
			continue
		}
		if len(techs) > 0 && !slices.Contains(techs, tech) {
			continue
		}
		docs = append(docs, models.SourceDocument{Path: b.Path, Content: string(b.Content), Technology: tech})
	}
	return docs
}
