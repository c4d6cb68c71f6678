package complexity

// Cognitive computes a nesting-weighted complexity score line by line.
//
// A line that opens a block raises the nesting level before the line itself
// is scored, so "if (x) {" is scored at the deeper level. Conditionals and
// loops cost 1 plus the current nesting level; jumps cost a flat 1.
func Cognitive(text string) int {
	score := 0
	nesting := 0

	for _, line := range splitLines(text) {
		if opensBlock(line) {
			nesting++
		} else if closesBlock(line) && nesting > 0 {
			nesting--
		}

		if conditionalKeyword.MatchString(line) {
			score += 1 + nesting
		}
		if loopKeyword.MatchString(line) {
			score += 1 + nesting
		}
		if jumpKeyword.MatchString(line) {
			score++
		}
	}

	return score
}
