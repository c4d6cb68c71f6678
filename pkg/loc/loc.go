// Package loc counts total, code, comment and blank lines of legacy artifacts.
package loc

import (
	"strings"

	"github.com/panbanda/relic/pkg/models"
)

// Count classifies every line of content. Comment syntax depends on the
// technology: Perl uses '#' and POD blocks, the XML technologies use <!-- -->.
// Unknown technologies count every non-blank line as code.
func Count(content string, tech models.Technology) models.LineCounts {
	lines := strings.Split(content, "\n")
	// Trim trailing empty line from final newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var c counter
	switch {
	case tech == models.TechPerl:
		c.classify = c.perlLine
	case tech.IsXML():
		c.classify = c.xmlLine
	default:
		c.classify = func(string) bool { return false }
	}

	for _, line := range lines {
		c.add(strings.TrimSpace(strings.TrimSuffix(line, "\r")))
	}
	return c.counts
}

// counter accumulates counts; classify reports whether a non-blank line is a comment.
type counter struct {
	counts   models.LineCounts
	classify func(trimmed string) bool

	inPOD     bool
	inData    bool
	inComment bool
}

func (c *counter) add(trimmed string) {
	c.counts.Total++

	if trimmed == "" {
		c.counts.Blank++
		return
	}
	if c.classify(trimmed) {
		c.counts.Comment++
		return
	}
	c.counts.Code++
}

func (c *counter) perlLine(trimmed string) bool {
	if c.inData {
		return true
	}
	if c.inPOD {
		if strings.HasPrefix(trimmed, "=cut") {
			c.inPOD = false
		}
		return true
	}
	if isPODStart(trimmed) {
		c.inPOD = true
		return true
	}
	if trimmed == "__END__" || trimmed == "__DATA__" {
		c.inData = true
		return true
	}
	return strings.HasPrefix(trimmed, "#")
}

// isPODStart matches POD directives such as =pod, =head1 or =item.
func isPODStart(trimmed string) bool {
	if len(trimmed) < 2 || trimmed[0] != '=' {
		return false
	}
	ch := trimmed[1]
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// xmlLine walks the line through comment boundaries. Any non-blank text
// outside <!-- --> makes it a code line.
func (c *counter) xmlLine(trimmed string) bool {
	code := false
	rest := trimmed
	for rest != "" {
		if c.inComment {
			end := strings.Index(rest, "-->")
			if end < 0 {
				break
			}
			c.inComment = false
			rest = rest[end+len("-->"):]
			continue
		}
		start := strings.Index(rest, "<!--")
		if start < 0 {
			code = code || strings.TrimSpace(rest) != ""
			break
		}
		code = code || strings.TrimSpace(rest[:start]) != ""
		c.inComment = true
		rest = rest[start+len("<!--"):]
	}
	return !code
}
