// Package compare diffs metric records and reports, and fits trends over a
// series of reports.
package compare

import (
	"slices"
	"strings"

	"github.com/panbanda/relic/pkg/analyzer/complexity"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
	"github.com/panbanda/relic/pkg/stats"
)

// Status describes how a file changed between two reports.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusRenamed   Status = "renamed"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
)

// MetricsDelta is head minus base for every metric.
type MetricsDelta struct {
	CyclomaticComplexity int     `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity" toon:"cyclomatic_complexity"`
	CognitiveComplexity  int     `json:"cognitive_complexity" yaml:"cognitive_complexity" toon:"cognitive_complexity"`
	NestingDepth         int     `json:"nesting_depth" yaml:"nesting_depth" toon:"nesting_depth"`
	HalsteadVolume       float64 `json:"halstead_volume" yaml:"halstead_volume" toon:"halstead_volume"`
	HalsteadDifficulty   float64 `json:"halstead_difficulty" yaml:"halstead_difficulty" toon:"halstead_difficulty"`
	MaintainabilityIndex float64 `json:"maintainability_index" yaml:"maintainability_index" toon:"maintainability_index"`
}

// IsZero reports whether nothing changed.
func (d MetricsDelta) IsZero() bool {
	return d == MetricsDelta{}
}

// Metrics returns head minus base, rounding float deltas to 2 decimals.
func Metrics(base, head complexity.Metrics) MetricsDelta {
	return MetricsDelta{
		CyclomaticComplexity: head.CyclomaticComplexity - base.CyclomaticComplexity,
		CognitiveComplexity:  head.CognitiveComplexity - base.CognitiveComplexity,
		NestingDepth:         head.NestingDepth - base.NestingDepth,
		HalsteadVolume:       stats.Round2(head.HalsteadVolume - base.HalsteadVolume),
		HalsteadDifficulty:   stats.Round2(head.HalsteadDifficulty - base.HalsteadDifficulty),
		MaintainabilityIndex: stats.Round2(head.MaintainabilityIndex - base.MaintainabilityIndex),
	}
}

// FileDelta is the comparison of one file.
type FileDelta struct {
	Path      string              `json:"path" yaml:"path" toon:"path"`
	OldPath   string              `json:"old_path,omitempty" yaml:"old_path,omitempty" toon:"old_path,omitempty"`
	Status    Status              `json:"status" yaml:"status" toon:"status"`
	Base      *models.FileMetrics `json:"base,omitempty" yaml:"base,omitempty" toon:"base,omitempty"`
	Head      *models.FileMetrics `json:"head,omitempty" yaml:"head,omitempty" toon:"head,omitempty"`
	Delta     MetricsDelta        `json:"delta" yaml:"delta" toon:"delta"`
	RiskDelta float64             `json:"risk_delta" yaml:"risk_delta" toon:"risk_delta"`
	OldLevel  models.Level        `json:"old_level,omitempty" yaml:"old_level,omitempty" toon:"old_level,omitempty"`
	NewLevel  models.Level        `json:"new_level,omitempty" yaml:"new_level,omitempty" toon:"new_level,omitempty"`
}

// SummaryDelta compares the headline aggregates of two reports.
type SummaryDelta struct {
	Files               int     `json:"files" yaml:"files" toon:"files"`
	LinesOfCode         int     `json:"lines_of_code" yaml:"lines_of_code" toon:"lines_of_code"`
	MeanCyclomatic      float64 `json:"mean_cyclomatic" yaml:"mean_cyclomatic" toon:"mean_cyclomatic"`
	MeanCognitive       float64 `json:"mean_cognitive" yaml:"mean_cognitive" toon:"mean_cognitive"`
	MeanMaintainability float64 `json:"mean_maintainability" yaml:"mean_maintainability" toon:"mean_maintainability"`
	MeanRisk            float64 `json:"mean_risk" yaml:"mean_risk" toon:"mean_risk"`
	Critical            int     `json:"critical" yaml:"critical" toon:"critical"`
	High                int     `json:"high" yaml:"high" toon:"high"`
}

// Comparison is the diff between a base and a head report.
type Comparison struct {
	BaseID    string       `json:"base_id" yaml:"base_id" toon:"base_id"`
	HeadID    string       `json:"head_id" yaml:"head_id" toon:"head_id"`
	Files     []FileDelta  `json:"files" yaml:"files" toon:"files"`
	Summary   SummaryDelta `json:"summary" yaml:"summary" toon:"summary"`
	Added     int          `json:"added" yaml:"added" toon:"added"`
	Removed   int          `json:"removed" yaml:"removed" toon:"removed"`
	Renamed   int          `json:"renamed" yaml:"renamed" toon:"renamed"`
	Improved  int          `json:"improved" yaml:"improved" toon:"improved"`
	Regressed int          `json:"regressed" yaml:"regressed" toon:"regressed"`
}

// Reports compares two reports. Files are matched by path first; files left
// over on both sides are then paired by content fingerprint and reported as
// renames. A matched file improved when its risk score went down and
// regressed when it went up.
func Reports(base, head *report.Report) *Comparison {
	c := &Comparison{BaseID: base.ID, HeadID: head.ID}

	baseByPath := make(map[string]*models.FileMetrics, len(base.Files))
	for i := range base.Files {
		baseByPath[base.Files[i].Path] = &base.Files[i]
	}

	matched := make(map[string]bool)
	var added []*models.FileMetrics
	for i := range head.Files {
		h := &head.Files[i]
		if b, ok := baseByPath[h.Path]; ok {
			matched[h.Path] = true
			c.addPair(b, h, "")
			continue
		}
		added = append(added, h)
	}

	// Unmatched base files by fingerprint, in path order for stable pairing.
	removedByPrint := make(map[string][]*models.FileMetrics)
	var removed []*models.FileMetrics
	for i := range base.Files {
		b := &base.Files[i]
		if matched[b.Path] {
			continue
		}
		removed = append(removed, b)
		if b.Fingerprint != "" {
			removedByPrint[b.Fingerprint] = append(removedByPrint[b.Fingerprint], b)
		}
	}
	for _, list := range removedByPrint {
		slices.SortFunc(list, func(x, y *models.FileMetrics) int { return strings.Compare(x.Path, y.Path) })
	}

	renamedFrom := make(map[string]bool)
	slices.SortFunc(added, func(x, y *models.FileMetrics) int { return strings.Compare(x.Path, y.Path) })
	for _, h := range added {
		if candidates := removedByPrint[h.Fingerprint]; h.Fingerprint != "" && len(candidates) > 0 {
			b := candidates[0]
			removedByPrint[h.Fingerprint] = candidates[1:]
			renamedFrom[b.Path] = true
			c.addPair(b, h, b.Path)
			continue
		}
		c.Files = append(c.Files, FileDelta{
			Path:      h.Path,
			Status:    StatusAdded,
			Head:      h,
			RiskDelta: h.RiskScore,
			NewLevel:  h.OverallLevel(),
		})
		c.Added++
	}

	for _, b := range removed {
		if renamedFrom[b.Path] {
			continue
		}
		c.Files = append(c.Files, FileDelta{
			Path:      b.Path,
			Status:    StatusRemoved,
			Base:      b,
			RiskDelta: stats.Round2(-b.RiskScore),
			OldLevel:  b.OverallLevel(),
		})
		c.Removed++
	}

	slices.SortStableFunc(c.Files, func(x, y FileDelta) int { return strings.Compare(x.Path, y.Path) })
	c.Summary = summaryDelta(base.Summary, head.Summary)
	return c
}

func (c *Comparison) addPair(b, h *models.FileMetrics, oldPath string) {
	d := FileDelta{
		Path:      h.Path,
		OldPath:   oldPath,
		Base:      b,
		Head:      h,
		Delta:     Metrics(b.Metrics, h.Metrics),
		RiskDelta: stats.Round2(h.RiskScore - b.RiskScore),
		OldLevel:  b.OverallLevel(),
		NewLevel:  h.OverallLevel(),
	}

	switch {
	case oldPath != "":
		d.Status = StatusRenamed
		c.Renamed++
	case d.Delta.IsZero() && d.RiskDelta == 0 && b.Fingerprint == h.Fingerprint:
		d.Status = StatusUnchanged
	default:
		d.Status = StatusChanged
	}

	switch {
	case d.RiskDelta < 0:
		c.Improved++
	case d.RiskDelta > 0:
		c.Regressed++
	}
	c.Files = append(c.Files, d)
}

func summaryDelta(base, head report.Summary) SummaryDelta {
	return SummaryDelta{
		Files:               head.Files - base.Files,
		LinesOfCode:         head.Lines.Code - base.Lines.Code,
		MeanCyclomatic:      stats.Round2(head.Cyclomatic.Mean - base.Cyclomatic.Mean),
		MeanCognitive:       stats.Round2(head.Cognitive.Mean - base.Cognitive.Mean),
		MeanMaintainability: stats.Round2(head.Maintainability.Mean - base.Maintainability.Mean),
		MeanRisk:            stats.Round2(head.Risk.Mean - base.Risk.Mean),
		Critical:            head.Levels.Critical - base.Levels.Critical,
		High:                head.Levels.High - base.Levels.High,
	}
}

// Regressions returns the files whose risk went up, riskiest change first.
func (c *Comparison) Regressions() []FileDelta {
	var out []FileDelta
	for _, f := range c.Files {
		if f.Base != nil && f.Head != nil && f.RiskDelta > 0 {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(x, y FileDelta) int {
		switch {
		case x.RiskDelta > y.RiskDelta:
			return -1
		case x.RiskDelta < y.RiskDelta:
			return 1
		}
		return 0
	})
	return out
}
