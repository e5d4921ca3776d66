package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate_OneOutputPerInput(t *testing.T) {
	counter := &TokenCounter{}
	section := &StructuralUnit{Meta: map[string]any{"title": "Pricing", "page_number": 9}}
	units := []*StructuralUnit{
		{Index: 0, RawText: "• unit   pricing table follows", Parent: section},
		{Index: 1, RawText: "", Parent: section},
		{Index: 2, RawText: "totals are due-\nnet thirty"},
	}

	annotated := Annotate(units, counter)
	require.Len(t, annotated, 3)

	assert.Equal(t, "unit pricing table follows", annotated[0].Text)
	assert.Equal(t, []string{"Pricing"}, annotated[0].Headings)
	require.NotNil(t, annotated[0].PageNumber)
	assert.Equal(t, 9, *annotated[0].PageNumber)
	assert.Equal(t, "Pricing\n\nunit pricing table follows", annotated[0].ContextText)

	// Malformed unit keeps its position and unit weight instead of being dropped.
	assert.Equal(t, 1, annotated[1].OrigIndex)
	assert.Equal(t, "", annotated[1].Text)
	assert.Equal(t, "", annotated[1].ContextText)
	assert.Equal(t, 1, annotated[1].TokenCount)

	assert.Equal(t, "totals are duenet thirty", annotated[2].Text)
	assert.Nil(t, annotated[2].PageNumber)
	assert.Equal(t, annotated[2].Text, annotated[2].ContextText,
		"no headings means the context text falls back to the cleaned text")
}

func TestChunk_EndToEnd(t *testing.T) {
	counter := &TokenCounter{}
	section := &StructuralUnit{Meta: map[string]any{"title": "Scope", "page": 1}}

	units := []*StructuralUnit{
		{Index: 0, RawText: "alpha beta gamma", Parent: section},
		{Index: 1, RawText: "delta epsilon", Parent: section},
		{Index: 2, RawText: "zeta", Parent: section},
	}
	// Word-count fallback: 3 + 2 + 1 tokens. Floor 4, ceiling 8.
	chunks := Chunk(units, counter, Config{MinTokens: 4, MaxTokens: 8})

	require.Len(t, chunks, 2)
	assert.Equal(t, []int{0, 1}, chunks[0].OrigIndices)
	assert.Equal(t, 5, chunks[0].TokenCount)
	assert.Equal(t, "alpha beta gamma\n\ndelta epsilon", chunks[0].Text)
	assert.Equal(t, []string{"Scope"}, chunks[0].Headings)
	require.NotNil(t, chunks[0].PageNumber)
	assert.Equal(t, 1, *chunks[0].PageNumber)

	assert.Equal(t, []int{2}, chunks[1].OrigIndices)
	assert.Equal(t, 1, chunks[1].TokenCount)
}
