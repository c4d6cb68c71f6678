package complexity

// NestingDepth returns the deepest block level reached in text.
// Unbalanced closing braces never take the depth below zero.
func NestingDepth(text string) int {
	current, deepest := 0, 0

	for _, line := range splitLines(text) {
		switch {
		case opensBlock(line):
			current++
			deepest = max(deepest, current)
		case closesBlock(line):
			current = max(current-1, 0)
		}
	}

	return deepest
}
