// Package complexity computes surface-level complexity and maintainability
// metrics for legacy source text.
//
// The metrics are derived from textual patterns rather than a syntax tree so
// the same rules apply to Perl scripts, TIBCO BusinessWorks processes and
// Pentaho Kettle transformations alike. Every function here is pure: no I/O,
// no shared state, safe to call from any number of goroutines.
package complexity

// Compute builds the full metrics profile for text. linesOfCode is supplied by
// the caller (see package loc); Compute never counts lines itself.
func Compute(text string, linesOfCode int) Metrics {
	cyclomatic := Cyclomatic(text)
	halstead := Halstead(text)

	return Metrics{
		CyclomaticComplexity: cyclomatic,
		CognitiveComplexity:  Cognitive(text),
		NestingDepth:         NestingDepth(text),
		HalsteadVolume:       halstead.Volume,
		HalsteadDifficulty:   halstead.Difficulty,
		MaintainabilityIndex: Maintainability(linesOfCode, cyclomatic, halstead.Volume),
	}
}
