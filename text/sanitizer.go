package text

import (
	"regexp"
	"strings"
)

var extraWhiteSpace = regexp.MustCompile("[[:space:]]+")

// Sanitizer
// Cleans up whitespace issues commonly found in scraped transcripts:
//   - Windows `\r` is dropped.
//   - Repeated newlines collapse into one.
//   - An escaped `\n` becomes a real newline.
//   - A space before a colon is removed.
//   - Tabs become spaces, runs of whitespace within a line collapse, and
//     each line is trimmed.
type Sanitizer struct{}

func (Sanitizer) Transform(text string) string {
	acc := make([]rune, 0, len(text))
	var lastRune rune
	for _, r := range text {
		switch {
		case r == '\r':
			// Silently drop Windows `\r`
		case r == '\n' && lastRune == '\n':
			// Drop additional newlines.
		case r == 'n' && lastRune == '\\':
			acc[len(acc)-1] = '\n'
		case r == ':' && lastRune == ' ':
			acc[len(acc)-1] = ':'
		case r == '\t':
			acc = append(acc, ' ')
		default:
			acc = append(acc, r)
		}
		if len(acc) > 0 {
			lastRune = acc[len(acc)-1]
		}
	}
	lines := strings.Split(string(acc), "\n")
	for lineIdx := range lines {
		line := extraWhiteSpace.ReplaceAllString(lines[lineIdx], " ")
		lines[lineIdx] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
