// Package classify turns raw complexity metrics into levels, a risk score
// and review suggestions.
package classify

import (
	"math"

	"github.com/panbanda/relic/pkg/analyzer/complexity"
	"github.com/panbanda/relic/pkg/config"
	"github.com/panbanda/relic/pkg/models"
)

// Risk components saturate at these values.
const (
	cyclomaticCeiling = 20.0
	cognitiveCeiling  = 30.0
	nestingCeiling    = 6.0
)

// Classifier maps metrics onto levels using configurable bands and weights.
type Classifier struct {
	thresholds config.ThresholdConfig
	weights    config.RiskConfig
}

// New creates a classifier from the given bands and risk weights.
func New(thresholds config.ThresholdConfig, weights config.RiskConfig) *Classifier {
	return &Classifier{thresholds: thresholds, weights: weights}
}

// Default creates a classifier with the default bands and weights.
func Default() *Classifier {
	return FromConfig(config.DefaultConfig())
}

// FromConfig creates a classifier from a loaded configuration.
func FromConfig(cfg *config.Config) *Classifier {
	return New(cfg.Thresholds, cfg.Risk)
}

// CyclomaticLevel buckets cyclomatic complexity.
func (c *Classifier) CyclomaticLevel(cc int) models.Level {
	return ascendingLevel(float64(cc), c.thresholds.Cyclomatic)
}

// NestingLevel buckets maximum nesting depth.
func (c *Classifier) NestingLevel(depth int) models.Level {
	return ascendingLevel(float64(depth), c.thresholds.Nesting)
}

// MaintainabilityLevel buckets the maintainability index, where higher is better.
func (c *Classifier) MaintainabilityLevel(mi float64) models.Level {
	b := c.thresholds.Maintainability
	switch {
	case mi >= b.Low:
		return models.LevelLow
	case mi >= b.Medium:
		return models.LevelMedium
	case mi >= b.High:
		return models.LevelHigh
	default:
		return models.LevelCritical
	}
}

func ascendingLevel(v float64, b config.Band) models.Level {
	switch {
	case v <= b.Low:
		return models.LevelLow
	case v <= b.Medium:
		return models.LevelMedium
	case v <= b.High:
		return models.LevelHigh
	default:
		return models.LevelCritical
	}
}

// RiskScore combines saturating metric components into a 0-100 score,
// rounded to 2 decimals. Higher is riskier.
func (c *Classifier) RiskScore(m complexity.Metrics) float64 {
	w := c.weights
	total := w.Total()
	if total <= 0 {
		return 0
	}

	sum := w.Cyclomatic*saturate(float64(m.CyclomaticComplexity), cyclomaticCeiling) +
		w.Cognitive*saturate(float64(m.CognitiveComplexity), cognitiveCeiling) +
		w.Nesting*saturate(float64(m.NestingDepth), nestingCeiling) +
		w.Maintainability*saturate(100-m.MaintainabilityIndex, 100)

	score := 100 * sum / total
	return math.Round(math.Max(0, math.Min(100, score))*100) / 100
}

// saturate maps v onto [0,1], reaching 1 at ceiling.
func saturate(v, ceiling float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Min(v/ceiling, 1)
}

// Classify builds the full record for one analyzed file.
func (c *Classifier) Classify(path string, tech models.Technology, lines models.LineCounts, m complexity.Metrics) models.FileMetrics {
	fm := models.FileMetrics{
		Path:                 path,
		Technology:           tech,
		Lines:                lines,
		Metrics:              m,
		ComplexityLevel:      c.CyclomaticLevel(m.CyclomaticComplexity),
		NestingLevel:         c.NestingLevel(m.NestingDepth),
		MaintainabilityLevel: c.MaintainabilityLevel(m.MaintainabilityIndex),
		RiskScore:            c.RiskScore(m),
	}
	fm.Suggestions = c.Suggest(&fm)
	return fm
}
