package chunking

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	hyphenBreak = regexp.MustCompile(`-\s*\n\s*`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	bulletGlyph = regexp.MustCompile(`[•·◦]+\s*`)
)

// Normalize applies light, structure-preserving cleaning to extracted text.
// Paragraph breaks (double newlines) survive; token accounting happens after
// this pass so the counts always describe the cleaned text.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := spaceRuns.ReplaceAllString(raw, " ")
	// "develop-\nment" -> "development"
	text = hyphenBreak.ReplaceAllString(text, "")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = bulletGlyph.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
