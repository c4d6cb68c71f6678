package complexity

// Cyclomatic approximates cyclomatic complexity as 1 plus the number of
// decision tokens in text. Tokens inside strings and comments are counted too.
func Cyclomatic(text string) int {
	count := 1
	for _, p := range decisionPatterns {
		count += len(p.FindAllStringIndex(text, -1))
	}
	return count
}
