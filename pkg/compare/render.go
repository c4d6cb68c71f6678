package compare

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/relic/internal/output"
)

// View renders a comparison.
type View struct {
	Comparison *Comparison
}

// NewView creates a renderable view of c.
func NewView(c *Comparison) *View {
	return &View{Comparison: c}
}

func (v *View) RenderData() any {
	return v.Comparison
}

func (v *View) sections(colored bool) []output.Renderable {
	return []output.Renderable{v.summarySection(), v.fileTable(colored)}
}

func (v *View) RenderText(w io.Writer, colored bool) error {
	r := &output.Report{Title: "Report Comparison", Sections: v.sections(colored)}
	return r.RenderText(w, colored)
}

func (v *View) RenderMarkdown(w io.Writer) error {
	r := &output.Report{Title: "Report Comparison", Sections: v.sections(false)}
	return r.RenderMarkdown(w)
}

func (v *View) summarySection() *output.Section {
	c := v.Comparison
	s := c.Summary
	return &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Base: %s\nHead: %s\n"+
				"Files: %+d (%d added, %d removed, %d renamed)\n"+
				"Improved: %d, regressed: %d\n"+
				"Mean cyclomatic: %+.2f, mean maintainability: %+.2f, mean risk: %+.2f\n"+
				"Critical: %+d, high: %+d",
			c.BaseID, c.HeadID,
			s.Files, c.Added, c.Removed, c.Renamed,
			c.Improved, c.Regressed,
			s.MeanCyclomatic, s.MeanMaintainability, s.MeanRisk,
			s.Critical, s.High,
		),
	}
}

func (v *View) fileTable(colored bool) *output.Table {
	rows := make([][]string, 0, len(v.Comparison.Files))
	for _, f := range v.Comparison.Files {
		if f.Status == StatusUnchanged {
			continue
		}
		path := f.Path
		if f.OldPath != "" {
			path = f.OldPath + " -> " + f.Path
		}
		risk := fmt.Sprintf("%+.2f", f.RiskDelta)
		if colored {
			switch {
			case f.RiskDelta > 0:
				risk = output.LevelColor("high", risk)
			case f.RiskDelta < 0:
				risk = output.LevelColor("low", risk)
			}
		}
		rows = append(rows, []string{
			path,
			string(f.Status),
			fmt.Sprintf("%+d", f.Delta.CyclomaticComplexity),
			fmt.Sprintf("%+d", f.Delta.NestingDepth),
			fmt.Sprintf("%+.2f", f.Delta.MaintainabilityIndex),
			levelChange(string(f.OldLevel), string(f.NewLevel)),
			risk,
		})
	}
	return output.NewTable("Changed Files",
		[]string{"Path", "Status", "CC", "Depth", "MI", "Level", "Risk"},
		rows, nil, v.Comparison.Files)
}

func levelChange(from, to string) string {
	switch {
	case from == "":
		return to
	case to == "", from == to:
		return from
	}
	return from + " -> " + to
}

// TrendView renders a trend.
type TrendView struct {
	Trend *Trend
}

// NewTrendView creates a renderable view of t.
func NewTrendView(t *Trend) *TrendView {
	return &TrendView{Trend: t}
}

func (v *TrendView) RenderData() any {
	return v.Trend
}

func (v *TrendView) sections() []output.Renderable {
	return []output.Renderable{v.pointTable(), v.regressionSection()}
}

func (v *TrendView) RenderText(w io.Writer, colored bool) error {
	r := &output.Report{Title: "Risk Trend", Sections: v.sections()}
	return r.RenderText(w, colored)
}

func (v *TrendView) RenderMarkdown(w io.Writer) error {
	r := &output.Report{Title: "Risk Trend", Sections: v.sections()}
	return r.RenderMarkdown(w)
}

func (v *TrendView) pointTable() *output.Table {
	rows := make([][]string, 0, len(v.Trend.Points))
	for _, p := range v.Trend.Points {
		rows = append(rows, []string{
			p.GeneratedAt.Format("2006-01-02 15:04"),
			strconv.Itoa(p.Files),
			strconv.Itoa(p.LinesOfCode),
			fmt.Sprintf("%.2f", p.MeanCyclomatic),
			fmt.Sprintf("%.2f", p.MeanMaintainability),
			fmt.Sprintf("%.2f", p.MeanRisk),
			strconv.Itoa(p.Critical),
		})
	}
	return output.NewTable("Reports",
		[]string{"Generated", "Files", "LOC", "Avg CC", "Avg MI", "Avg Risk", "Critical"},
		rows, nil, v.Trend.Points)
}

func (v *TrendView) regressionSection() *output.Section {
	t := v.Trend
	direction := "worsening or flat"
	if t.Improving() {
		direction = "improving"
	}
	return &output.Section{
		Title: "Direction",
		Content: fmt.Sprintf(
			"Maintainability: %+.3f per report (R² %.2f)\n"+
				"Cyclomatic: %+.3f per report (R² %.2f)\n"+
				"Risk: %+.3f per report (R² %.2f)\n"+
				"Overall: %s",
			t.Maintainability.Slope, t.Maintainability.RSquared,
			t.Cyclomatic.Slope, t.Cyclomatic.RSquared,
			t.Risk.Slope, t.Risk.RSquared,
			direction,
		),
	}
}
