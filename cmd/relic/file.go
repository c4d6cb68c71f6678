package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/panbanda/relic/internal/output"
	"github.com/panbanda/relic/pkg/models"
	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Measure a single artifact",
	Long: `Measures one file and prints its metrics, levels and review hints.
The technology is detected from the extension and content unless given.

Examples:
  relic file etl/load_orders.pl
  relic file --technology tibco_bw Orders/Load.process
  relic file --lines 120 -f json report.ktr`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

func init() {
	addOutputFlags(fileCmd)
	fileCmd.Flags().StringP("technology", "t", "", "Technology tag (perl, tibco_bw, pentaho_kettle)")
	fileCmd.Flags().Int("lines", 0, "Lines of code to use for the maintainability index (0 = counted)")
	fileCmd.Flags().Bool("no-cache", false, "Disable the on-disk result cache")

	rootCmd.AddCommand(fileCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	path := args[0]

	techName, _ := cmd.Flags().GetString("technology")
	tech, err := models.ParseTechnology(techName)
	if err != nil {
		return err
	}
	lines, _ := cmd.Flags().GetInt("lines")

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	fm, err := svc.AnalyzeSource(models.SourceDocument{
		Path:        path,
		Content:     string(content),
		LinesOfCode: lines,
		Technology:  tech,
	})
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&fileView{fm: fm})
}

// fileView renders one file's metrics record.
type fileView struct {
	fm models.FileMetrics
}

func (v *fileView) RenderData() any {
	return v.fm
}

func (v *fileView) report(colored bool) *output.Report {
	fm := v.fm
	m := fm.Metrics
	level := func(l models.Level) string {
		if colored {
			return output.LevelColor(string(l), string(l))
		}
		return string(l)
	}

	metrics := output.NewTable("Metrics", []string{"Metric", "Value", "Level"}, [][]string{
		{"Cyclomatic complexity", strconv.Itoa(m.CyclomaticComplexity), level(fm.ComplexityLevel)},
		{"Cognitive complexity", strconv.Itoa(m.CognitiveComplexity), ""},
		{"Nesting depth", strconv.Itoa(m.NestingDepth), level(fm.NestingLevel)},
		{"Halstead volume", fmt.Sprintf("%.2f", m.HalsteadVolume), ""},
		{"Halstead difficulty", fmt.Sprintf("%.2f", m.HalsteadDifficulty), ""},
		{"Maintainability index", fmt.Sprintf("%.2f", m.MaintainabilityIndex), level(fm.MaintainabilityLevel)},
	}, []string{"Risk score", fmt.Sprintf("%.2f", fm.RiskScore), level(fm.OverallLevel())}, fm.Metrics)

	sections := []output.Renderable{
		&output.Section{
			Title: "File",
			Content: fmt.Sprintf("Path: %s\nTechnology: %s\nLines: %d code, %d comment, %d blank",
				fm.Path, fm.Technology.DisplayName(), fm.Lines.Code, fm.Lines.Comment, fm.Lines.Blank),
		},
		metrics,
	}
	if len(fm.Suggestions) > 0 {
		rows := make([][]string, 0, len(fm.Suggestions))
		for _, s := range fm.Suggestions {
			rows = append(rows, []string{level(s.Severity), s.Rule, s.Message})
		}
		sections = append(sections, output.NewTable("Suggestions", []string{"Severity", "Rule", "Message"}, rows, nil, fm.Suggestions))
	}
	return &output.Report{Title: fm.Path, Sections: sections}
}

func (v *fileView) RenderText(w io.Writer, colored bool) error {
	return v.report(colored).RenderText(w, colored)
}

func (v *fileView) RenderMarkdown(w io.Writer) error {
	return v.report(false).RenderMarkdown(w)
}
