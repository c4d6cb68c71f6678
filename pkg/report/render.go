package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/relic/internal/output"
	"github.com/panbanda/relic/pkg/models"
)

// View renders a report, optionally restricted to a filtered file list.
type View struct {
	Report *Report
	Files  []models.FileMetrics // defaults to Report.Files
}

// NewView creates a renderable view of r showing files.
func NewView(r *Report, files []models.FileMetrics) *View {
	if files == nil {
		files = r.Files
	}
	return &View{Report: r, Files: files}
}

type viewData struct {
	ID           string               `json:"id" yaml:"id" toon:"id"`
	Summary      Summary              `json:"summary" yaml:"summary" toon:"summary"`
	Technologies []Group              `json:"technologies" yaml:"technologies" toon:"technologies"`
	Files        []models.FileMetrics `json:"files" yaml:"files" toon:"files"`
	Skipped      []Skipped            `json:"skipped,omitempty" yaml:"skipped,omitempty" toon:"skipped,omitempty"`
}

func (v *View) RenderData() any {
	return viewData{
		ID:           v.Report.ID,
		Summary:      v.Report.Summary,
		Technologies: v.Report.Technologies,
		Files:        v.Files,
		Skipped:      v.Report.Skipped,
	}
}

func (v *View) sections(colored bool) []output.Renderable {
	sections := []output.Renderable{v.summarySection(), v.technologyTable(), v.fileTable(colored)}
	if len(v.Report.Skipped) > 0 {
		sections = append(sections, v.skippedTable())
	}
	return sections
}

func (v *View) RenderText(w io.Writer, colored bool) error {
	r := &output.Report{Title: "Legacy Artifact Triage", Sections: v.sections(colored)}
	return r.RenderText(w, colored)
}

func (v *View) RenderMarkdown(w io.Writer) error {
	r := &output.Report{Title: "Legacy Artifact Triage", Sections: v.sections(false)}
	return r.RenderMarkdown(w)
}

func (v *View) summarySection() *output.Section {
	s := v.Report.Summary
	return &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Files: %d (%d code lines)\n"+
				"Cyclomatic: mean %.2f, p90 %.2f, max %.0f\n"+
				"Maintainability: mean %.2f, min %.2f\n"+
				"Risk: mean %.2f, max %.2f\n"+
				"Levels: %d critical, %d high, %d medium, %d low",
			s.Files, s.Lines.Code,
			s.Cyclomatic.Mean, s.Cyclomatic.P90, s.Cyclomatic.Max,
			s.Maintainability.Mean, s.Maintainability.Min,
			s.Risk.Mean, s.Risk.Max,
			s.Levels.Critical, s.Levels.High, s.Levels.Medium, s.Levels.Low,
		),
	}
}

func (v *View) technologyTable() *output.Table {
	rows := make([][]string, 0, len(v.Report.Technologies))
	for _, g := range v.Report.Technologies {
		rows = append(rows, []string{
			g.Technology.DisplayName(),
			strconv.Itoa(g.Summary.Files),
			strconv.Itoa(g.Summary.Lines.Code),
			fmt.Sprintf("%.2f", g.Summary.Cyclomatic.Mean),
			fmt.Sprintf("%.2f", g.Summary.Maintainability.Mean),
			fmt.Sprintf("%.2f", g.Summary.Risk.Mean),
		})
	}
	return output.NewTable("By Technology",
		[]string{"Technology", "Files", "LOC", "Avg CC", "Avg MI", "Avg Risk"},
		rows, nil, v.Report.Technologies)
}

func (v *View) fileTable(colored bool) *output.Table {
	rows := make([][]string, 0, len(v.Files))
	for _, f := range v.Files {
		level := string(f.OverallLevel())
		if colored {
			level = output.LevelColor(level, level)
		}
		rows = append(rows, []string{
			f.Path,
			string(f.Technology),
			strconv.Itoa(f.Lines.Code),
			strconv.Itoa(f.Metrics.CyclomaticComplexity),
			strconv.Itoa(f.Metrics.CognitiveComplexity),
			strconv.Itoa(f.Metrics.NestingDepth),
			fmt.Sprintf("%.1f", f.Metrics.HalsteadVolume),
			fmt.Sprintf("%.2f", f.Metrics.MaintainabilityIndex),
			level,
			fmt.Sprintf("%.2f", f.RiskScore),
		})
	}
	footer := []string{fmt.Sprintf("%d of %d files", len(v.Files), len(v.Report.Files)), "", "", "", "", "", "", "", "", ""}
	return output.NewTable("Files",
		[]string{"Path", "Technology", "LOC", "CC", "Cognitive", "Depth", "Volume", "MI", "Level", "Risk"},
		rows, footer, v.Files)
}

func (v *View) skippedTable() *output.Table {
	rows := make([][]string, 0, len(v.Report.Skipped))
	for _, s := range v.Report.Skipped {
		rows = append(rows, []string{s.Path, s.Reason})
	}
	return output.NewTable("Skipped", []string{"Path", "Reason"}, rows, nil, v.Report.Skipped)
}
