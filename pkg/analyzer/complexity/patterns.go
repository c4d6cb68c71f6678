package complexity

import (
	"regexp"
	"strings"
)

// decisionPatterns are counted over the whole buffer. Each pattern is counted
// independently, so "else if" contributes both an "if" and an "else if" match.
var decisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belse\s+if\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bforeach\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`\?.*?:`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
}

// Line classification shared by the cognitive walker and the nesting tracker.
var (
	trailingOpenBrace = regexp.MustCompile(`\{\s*$`)
	controlOpenBrace  = regexp.MustCompile(`\b(?:if|while|for|foreach|else|sub)\b.*\{`)
	closeBraceOnly    = regexp.MustCompile(`^\}$`)

	conditionalKeyword = regexp.MustCompile(`\b(?:if|elsif|unless|else)\b`)
	loopKeyword        = regexp.MustCompile(`\b(?:while|for|foreach|until)\b`)
	jumpKeyword        = regexp.MustCompile(`\b(?:break|continue|return|goto|next|last)\b`)
)

// Halstead token classes.
var (
	symbolOperator = regexp.MustCompile(`[+\-*/=%<>!&|^~]`)
	wordOperator   = regexp.MustCompile(`\b(?:and|or|not|eq|ne|lt|gt|le|ge)\b`)

	identifierOperand = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)
	numberOperand     = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	doubleQuoted      = regexp.MustCompile(`".*?"`)
	singleQuoted      = regexp.MustCompile(`'.*?'`)
)

// opensBlock reports whether a line enters a new block.
func opensBlock(line string) bool {
	return trailingOpenBrace.MatchString(line) || controlOpenBrace.MatchString(line)
}

// closesBlock reports whether a line is nothing but a closing brace.
func closesBlock(line string) bool {
	return closeBraceOnly.MatchString(strings.TrimSpace(line))
}

// splitLines splits text on "\n", dropping a trailing "\r" from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
