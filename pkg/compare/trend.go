package compare

import (
	"slices"
	"time"

	"github.com/panbanda/relic/pkg/report"
	"github.com/panbanda/relic/pkg/stats"
)

// TrendPoint is one report's headline numbers.
type TrendPoint struct {
	ReportID            string    `json:"report_id" yaml:"report_id" toon:"report_id"`
	GeneratedAt         time.Time `json:"generated_at" yaml:"generated_at" toon:"generated_at"`
	Files               int       `json:"files" yaml:"files" toon:"files"`
	LinesOfCode         int       `json:"lines_of_code" yaml:"lines_of_code" toon:"lines_of_code"`
	MeanCyclomatic      float64   `json:"mean_cyclomatic" yaml:"mean_cyclomatic" toon:"mean_cyclomatic"`
	MeanMaintainability float64   `json:"mean_maintainability" yaml:"mean_maintainability" toon:"mean_maintainability"`
	MeanRisk            float64   `json:"mean_risk" yaml:"mean_risk" toon:"mean_risk"`
	Critical            int       `json:"critical" yaml:"critical" toon:"critical"`
}

// Trend fits regressions over a chronological series of reports.
type Trend struct {
	Points          []TrendPoint     `json:"points" yaml:"points" toon:"points"`
	Maintainability stats.Regression `json:"maintainability" yaml:"maintainability" toon:"maintainability"`
	Cyclomatic      stats.Regression `json:"cyclomatic" yaml:"cyclomatic" toon:"cyclomatic"`
	Risk            stats.Regression `json:"risk" yaml:"risk" toon:"risk"`
}

// Improving reports whether maintainability is rising and risk falling.
func (t *Trend) Improving() bool {
	return t.Maintainability.Slope > 0 && t.Risk.Slope <= 0
}

// Series orders reports by generation time and fits a linear regression to
// mean maintainability, mean cyclomatic complexity and mean risk.
func Series(reports []*report.Report) *Trend {
	ordered := slices.Clone(reports)
	slices.SortStableFunc(ordered, func(a, b *report.Report) int {
		return a.GeneratedAt.Compare(b.GeneratedAt)
	})

	t := &Trend{Points: make([]TrendPoint, 0, len(ordered))}
	mi := make([]float64, 0, len(ordered))
	cc := make([]float64, 0, len(ordered))
	risk := make([]float64, 0, len(ordered))

	for _, r := range ordered {
		s := r.Summary
		t.Points = append(t.Points, TrendPoint{
			ReportID:            r.ID,
			GeneratedAt:         r.GeneratedAt,
			Files:               s.Files,
			LinesOfCode:         s.Lines.Code,
			MeanCyclomatic:      s.Cyclomatic.Mean,
			MeanMaintainability: s.Maintainability.Mean,
			MeanRisk:            s.Risk.Mean,
			Critical:            s.Levels.Critical,
		})
		mi = append(mi, s.Maintainability.Mean)
		cc = append(cc, s.Cyclomatic.Mean)
		risk = append(risk, s.Risk.Mean)
	}

	t.Maintainability = stats.Regress(mi)
	t.Cyclomatic = stats.Regress(cc)
	t.Risk = stats.Regress(risk)
	return t
}
