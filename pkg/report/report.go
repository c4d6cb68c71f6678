// Package report aggregates classified file metrics into a persisted report.
package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/stats"
)

// SchemaVersion is the version of the report file format.
const SchemaVersion = 1

// ErrInvalidReport is returned when a report file fails validation.
var ErrInvalidReport = errors.New("invalid report")

// Report is the result of one batch analysis.
type Report struct {
	SchemaVersion int                  `json:"schema_version" yaml:"schema_version" toon:"schema_version"`
	ID            string               `json:"id" yaml:"id" toon:"id"`
	GeneratedAt   time.Time            `json:"generated_at" yaml:"generated_at" toon:"generated_at"`
	Paths         []string             `json:"paths" yaml:"paths" toon:"paths"`
	Summary       Summary              `json:"summary" yaml:"summary" toon:"summary"`
	Technologies  []Group              `json:"technologies" yaml:"technologies" toon:"technologies"`
	Files         []models.FileMetrics `json:"files" yaml:"files" toon:"files"`
	Skipped       []Skipped            `json:"skipped" yaml:"skipped" toon:"skipped"`
}

// Skipped records a file that could not be analyzed.
type Skipped struct {
	Path   string `json:"path" yaml:"path" toon:"path"`
	Reason string `json:"reason" yaml:"reason" toon:"reason"`
}

// Summary aggregates metrics over a set of files.
type Summary struct {
	Files              int                `json:"files" yaml:"files" toon:"files"`
	Lines              models.LineCounts  `json:"lines" yaml:"lines" toon:"lines"`
	Cyclomatic         stats.Distribution `json:"cyclomatic" yaml:"cyclomatic" toon:"cyclomatic"`
	Cognitive          stats.Distribution `json:"cognitive" yaml:"cognitive" toon:"cognitive"`
	Nesting            stats.Distribution `json:"nesting" yaml:"nesting" toon:"nesting"`
	HalsteadVolume     stats.Distribution `json:"halstead_volume" yaml:"halstead_volume" toon:"halstead_volume"`
	HalsteadDifficulty stats.Distribution `json:"halstead_difficulty" yaml:"halstead_difficulty" toon:"halstead_difficulty"`
	Maintainability    stats.Distribution `json:"maintainability" yaml:"maintainability" toon:"maintainability"`
	Risk               stats.Distribution `json:"risk" yaml:"risk" toon:"risk"`
	Levels             LevelCounts        `json:"levels" yaml:"levels" toon:"levels"`
	ComplexityLevels   LevelCounts        `json:"complexity_levels" yaml:"complexity_levels" toon:"complexity_levels"`
}

// LevelCounts counts files per level.
type LevelCounts struct {
	Low      int `json:"low" yaml:"low" toon:"low"`
	Medium   int `json:"medium" yaml:"medium" toon:"medium"`
	High     int `json:"high" yaml:"high" toon:"high"`
	Critical int `json:"critical" yaml:"critical" toon:"critical"`
}

// Add counts one file at level.
func (c *LevelCounts) Add(level models.Level) {
	switch level {
	case models.LevelLow:
		c.Low++
	case models.LevelMedium:
		c.Medium++
	case models.LevelHigh:
		c.High++
	case models.LevelCritical:
		c.Critical++
	}
}

// Get returns the count for level.
func (c LevelCounts) Get(level models.Level) int {
	switch level {
	case models.LevelLow:
		return c.Low
	case models.LevelMedium:
		return c.Medium
	case models.LevelHigh:
		return c.High
	case models.LevelCritical:
		return c.Critical
	}
	return 0
}

// Group is the summary of one technology.
type Group struct {
	Technology models.Technology `json:"technology" yaml:"technology" toon:"technology"`
	Summary    Summary           `json:"summary" yaml:"summary" toon:"summary"`
}

// Options controls report metadata.
type Options struct {
	Paths   []string
	Skipped []Skipped
	ID      string           // generated when empty
	Now     func() time.Time // time.Now when nil
}

// Build sorts files by risk (highest first, then path) and computes the
// overall and per-technology summaries. The input slice is not modified.
func Build(files []models.FileMetrics, opts Options) *Report {
	sorted := slices.Clone(files)
	SortByRisk(sorted)

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	skipped := slices.Clone(opts.Skipped)
	slices.SortFunc(skipped, func(a, b Skipped) int { return strings.Compare(a.Path, b.Path) })
	if skipped == nil {
		skipped = []Skipped{}
	}
	if sorted == nil {
		sorted = []models.FileMetrics{}
	}
	paths := slices.Clone(opts.Paths)
	if paths == nil {
		paths = []string{}
	}

	return &Report{
		SchemaVersion: SchemaVersion,
		ID:            id,
		GeneratedAt:   now().UTC(),
		Paths:         paths,
		Summary:       Summarize(sorted),
		Technologies:  groupByTechnology(sorted),
		Files:         sorted,
		Skipped:       skipped,
	}
}

// SortByRisk orders files by risk score descending, then path ascending.
func SortByRisk(files []models.FileMetrics) {
	slices.SortStableFunc(files, func(a, b models.FileMetrics) int {
		switch {
		case a.RiskScore > b.RiskScore:
			return -1
		case a.RiskScore < b.RiskScore:
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// Summarize aggregates files.
func Summarize(files []models.FileMetrics) Summary {
	s := Summary{Files: len(files)}
	if len(files) == 0 {
		return s
	}

	n := len(files)
	cyclomatic := make([]float64, n)
	cognitive := make([]float64, n)
	nesting := make([]float64, n)
	volume := make([]float64, n)
	difficulty := make([]float64, n)
	mi := make([]float64, n)
	risk := make([]float64, n)

	for i := range files {
		f := &files[i]
		s.Lines.Total += f.Lines.Total
		s.Lines.Code += f.Lines.Code
		s.Lines.Comment += f.Lines.Comment
		s.Lines.Blank += f.Lines.Blank

		cyclomatic[i] = float64(f.Metrics.CyclomaticComplexity)
		cognitive[i] = float64(f.Metrics.CognitiveComplexity)
		nesting[i] = float64(f.Metrics.NestingDepth)
		volume[i] = f.Metrics.HalsteadVolume
		difficulty[i] = f.Metrics.HalsteadDifficulty
		mi[i] = f.Metrics.MaintainabilityIndex
		risk[i] = f.RiskScore

		s.Levels.Add(f.OverallLevel())
		s.ComplexityLevels.Add(f.ComplexityLevel)
	}

	s.Cyclomatic = stats.Describe(cyclomatic)
	s.Cognitive = stats.Describe(cognitive)
	s.Nesting = stats.Describe(nesting)
	s.HalsteadVolume = stats.Describe(volume)
	s.HalsteadDifficulty = stats.Describe(difficulty)
	s.Maintainability = stats.Describe(mi)
	s.Risk = stats.Describe(risk)
	return s
}

func groupByTechnology(files []models.FileMetrics) []Group {
	byTech := make(map[models.Technology][]models.FileMetrics)
	for _, f := range files {
		byTech[f.Technology] = append(byTech[f.Technology], f)
	}

	groups := make([]Group, 0, len(byTech))
	for _, tech := range append(models.Technologies(), models.TechUnknown) {
		if fs, ok := byTech[tech]; ok {
			groups = append(groups, Group{Technology: tech, Summary: Summarize(fs)})
		}
	}
	return groups
}

// File returns the record for path.
func (r *Report) File(path string) (models.FileMetrics, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return models.FileMetrics{}, false
}
