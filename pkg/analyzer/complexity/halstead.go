package complexity

import (
	"math"
	"regexp"
)

// Halstead extracts operators and operands from text with surface patterns and
// derives volume and difficulty. Keywords match the identifier pattern and are
// therefore counted as operands.
func Halstead(text string) HalsteadMetrics {
	operators := make(map[string]int)
	operands := make(map[string]int)

	collect(operators, text, symbolOperator, wordOperator)
	collect(operands, text, identifierOperand, numberOperand, doubleQuoted, singleQuoted)

	return newHalsteadMetrics(operators, operands)
}

// collect adds every match of each pattern to counts.
func collect(counts map[string]int, text string, patterns ...*regexp.Regexp) {
	for _, p := range patterns {
		for _, tok := range p.FindAllString(text, -1) {
			counts[tok]++
		}
	}
}

func newHalsteadMetrics(operators, operands map[string]int) HalsteadMetrics {
	h := HalsteadMetrics{
		OperatorsUnique: len(operators),
		OperandsUnique:  len(operands),
		OperatorsTotal:  sum(operators),
		OperandsTotal:   sum(operands),
	}

	h.Vocabulary = max(h.OperatorsUnique+h.OperandsUnique, 1)
	h.Length = h.OperatorsTotal + h.OperandsTotal

	// V = N * log2(n) - Program Volume
	h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))

	// D = (n1/2) * (N2/n2) - Program Difficulty
	h.Difficulty = (float64(h.OperatorsUnique) / 2.0) *
		(float64(h.OperandsTotal) / float64(max(h.OperandsUnique, 1)))

	return h
}

func sum(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
