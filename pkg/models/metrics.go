package models

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/relic/pkg/analyzer/complexity"
)

// Level is a coarse risk bucket derived from a metric.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Levels lists all levels from least to most severe.
func Levels() []Level {
	return []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical}
}

// Rank orders levels by severity (low = 0). Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	default:
		return -1
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if l.Rank() < 0 {
		return "", fmt.Errorf("invalid level %q (want low, medium, high or critical)", s)
	}
	return l, nil
}

// WorstLevel returns the most severe of the given levels.
func WorstLevel(levels ...Level) Level {
	worst := LevelLow
	for _, l := range levels {
		if l.Rank() > worst.Rank() {
			worst = l
		}
	}
	return worst
}

// LineCounts holds the line classification of one file.
type LineCounts struct {
	Total   int `json:"total" yaml:"total" toon:"total"`
	Code    int `json:"code" yaml:"code" toon:"code"`
	Comment int `json:"comment" yaml:"comment" toon:"comment"`
	Blank   int `json:"blank" yaml:"blank" toon:"blank"`
}

// LinesOfCode is the count handed to the metrics engine.
func (c LineCounts) LinesOfCode() int {
	return c.Code
}

// SourceDocument is one artifact submitted for analysis.
type SourceDocument struct {
	Path        string     `json:"path" yaml:"path" toon:"path"`
	Content     string     `json:"-"`
	LinesOfCode int        `json:"lines_of_code" yaml:"lines_of_code" toon:"lines_of_code"`
	Technology  Technology `json:"technology" yaml:"technology" toon:"technology"`
}

// Suggestion is a review hint attached to a file.
type Suggestion struct {
	Rule     string `json:"rule" yaml:"rule" toon:"rule"`
	Severity Level  `json:"severity" yaml:"severity" toon:"severity"`
	Message  string `json:"message" yaml:"message" toon:"message"`
}

// FileMetrics is the classified metrics record of one analyzed file.
type FileMetrics struct {
	Path                 string             `json:"path" yaml:"path" toon:"path"`
	Technology           Technology         `json:"technology" yaml:"technology" toon:"technology"`
	Fingerprint          string             `json:"fingerprint" yaml:"fingerprint" toon:"fingerprint"`
	Lines                LineCounts         `json:"lines" yaml:"lines" toon:"lines"`
	Metrics              complexity.Metrics `json:"metrics" yaml:"metrics" toon:"metrics"`
	ComplexityLevel      Level              `json:"complexity_level" yaml:"complexity_level" toon:"complexity_level"`
	NestingLevel         Level              `json:"nesting_level" yaml:"nesting_level" toon:"nesting_level"`
	MaintainabilityLevel Level              `json:"maintainability_level" yaml:"maintainability_level" toon:"maintainability_level"`
	RiskScore            float64            `json:"risk_score" yaml:"risk_score" toon:"risk_score"`
	Suggestions          []Suggestion       `json:"suggestions,omitempty" yaml:"suggestions,omitempty" toon:"suggestions,omitempty"`
}

// OverallLevel is the most severe of the per-dimension levels.
func (f *FileMetrics) OverallLevel() Level {
	return WorstLevel(f.ComplexityLevel, f.NestingLevel, f.MaintainabilityLevel)
}

// Fingerprint returns a fast, stable content hash used to match files across
// reports and to key in-memory caches.
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}
