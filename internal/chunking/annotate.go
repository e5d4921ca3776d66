package chunking

import "strings"

// Annotate turns raw structural units into cleaned, counted, metadata-resolved
// units. Exactly one AnnotatedUnit is produced per input unit, in order; a
// unit with missing or empty text still occupies its position with an empty
// cleaned text and unit token weight.
func Annotate(units []*StructuralUnit, counter *TokenCounter) []AnnotatedUnit {
	annotated := make([]AnnotatedUnit, 0, len(units))
	for _, u := range units {
		text := Normalize(u.RawText)
		headings := ResolveHeadings(u)
		count, approx := counter.Count(text)
		annotated = append(annotated, AnnotatedUnit{
			OrigIndex:   u.Index,
			Text:        text,
			ContextText: contextualize(text, headings),
			TokenCount:  count,
			Approx:      approx,
			PageNumber:  ResolvePage(u),
			Headings:    headings,
		})
	}
	return annotated
}

// contextualize prefixes the text with its breadcrumb so the embedded
// representation carries section context. Falls back to the cleaned text when
// there is nothing to add.
func contextualize(text string, headings []string) string {
	if len(headings) == 0 || text == "" {
		return text
	}
	return strings.Join(headings, " > ") + "\n\n" + text
}

// Chunk runs the full pipeline: annotate every unit, then merge forward under
// the token budget.
func Chunk(units []*StructuralUnit, counter *TokenCounter, cfg Config) []MergedChunk {
	return MergeForward(Annotate(units, counter), cfg)
}
