package complexity

// Metrics is the complexity and maintainability profile of one source text.
// It is a plain value: the same (text, linesOfCode) always yields the same Metrics.
type Metrics struct {
	CyclomaticComplexity int     `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity" toon:"cyclomatic_complexity"`
	CognitiveComplexity  int     `json:"cognitive_complexity" yaml:"cognitive_complexity" toon:"cognitive_complexity"`
	NestingDepth         int     `json:"nesting_depth" yaml:"nesting_depth" toon:"nesting_depth"`
	HalsteadVolume       float64 `json:"halstead_volume" yaml:"halstead_volume" toon:"halstead_volume"`
	HalsteadDifficulty   float64 `json:"halstead_difficulty" yaml:"halstead_difficulty" toon:"halstead_difficulty"`
	MaintainabilityIndex float64 `json:"maintainability_index" yaml:"maintainability_index" toon:"maintainability_index"`
}

// HalsteadMetrics represents Halstead software science metrics.
type HalsteadMetrics struct {
	OperatorsUnique int     `json:"operators_unique"` // n1: distinct operators
	OperandsUnique  int     `json:"operands_unique"`  // n2: distinct operands
	OperatorsTotal  int     `json:"operators_total"`  // N1: total operators
	OperandsTotal   int     `json:"operands_total"`   // N2: total operands
	Vocabulary      int     `json:"vocabulary"`       // n = max(n1 + n2, 1)
	Length          int     `json:"length"`           // N = N1 + N2
	Volume          float64 `json:"volume"`           // V = N * log2(n)
	Difficulty      float64 `json:"difficulty"`       // D = (n1/2) * (N2/max(n2,1))
}

// Empty reports whether the text produced no tokens at all.
func (h HalsteadMetrics) Empty() bool {
	return h.Length == 0
}
