package classify

import (
	"fmt"

	"github.com/panbanda/relic/pkg/models"
)

// Suggestion rule identifiers.
const (
	RuleSplitDecisions   = "split-decisions"
	RuleFlattenNesting   = "flatten-nesting"
	RuleSimplifyFlow     = "simplify-control-flow"
	RuleReduceVocabulary = "reduce-vocabulary"
	RulePrioritizeReview = "prioritize-review"
	RuleXMLFlow          = "split-process-flow"
)

// Suggest derives review hints from a classified file. Output order is fixed
// so the same record always yields the same suggestions.
func (c *Classifier) Suggest(fm *models.FileMetrics) []models.Suggestion {
	var out []models.Suggestion
	m := fm.Metrics

	if fm.ComplexityLevel.Rank() >= models.LevelHigh.Rank() {
		s := models.Suggestion{
			Rule:     RuleSplitDecisions,
			Severity: fm.ComplexityLevel,
			Message:  fmt.Sprintf("cyclomatic complexity %d: split independent decision paths into separate routines", m.CyclomaticComplexity),
		}
		if fm.Technology.IsXML() {
			s.Rule = RuleXMLFlow
			s.Message = fmt.Sprintf("cyclomatic complexity %d: move conditional transitions into sub-processes or sub-jobs", m.CyclomaticComplexity)
		}
		out = append(out, s)
	}

	if fm.NestingLevel.Rank() >= models.LevelHigh.Rank() {
		out = append(out, models.Suggestion{
			Rule:     RuleFlattenNesting,
			Severity: fm.NestingLevel,
			Message:  fmt.Sprintf("nesting depth %d: use early returns or guard clauses to flatten blocks", m.NestingDepth),
		})
	}

	if cog := c.CognitiveLevel(m.CognitiveComplexity); cog.Rank() >= models.LevelHigh.Rank() {
		out = append(out, models.Suggestion{
			Rule:     RuleSimplifyFlow,
			Severity: cog,
			Message:  fmt.Sprintf("cognitive complexity %d: reduce jumps and nested conditionals", m.CognitiveComplexity),
		})
	}

	if fm.MaintainabilityLevel.Rank() >= models.LevelHigh.Rank() {
		out = append(out, models.Suggestion{
			Rule:     RuleReduceVocabulary,
			Severity: fm.MaintainabilityLevel,
			Message:  fmt.Sprintf("maintainability index %.2f: extract repeated logic and shorten the file", m.MaintainabilityIndex),
		})
	}

	if fm.OverallLevel() == models.LevelCritical {
		out = append(out, models.Suggestion{
			Rule:     RulePrioritizeReview,
			Severity: models.LevelCritical,
			Message:  fmt.Sprintf("risk score %.2f: review before migration", fm.RiskScore),
		})
	}

	return out
}

// CognitiveLevel buckets cognitive complexity against the cyclomatic bands
// scaled by the cognitive saturation point.
func (c *Classifier) CognitiveLevel(cog int) models.Level {
	b := c.thresholds.Cyclomatic
	scale := cognitiveCeiling / cyclomaticCeiling
	b.Low *= scale
	b.Medium *= scale
	b.High *= scale
	return ascendingLevel(float64(cog), b)
}
