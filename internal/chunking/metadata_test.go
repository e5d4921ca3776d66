package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePage_OwnMetaWins(t *testing.T) {
	parent := &StructuralUnit{Meta: map[string]any{"page_number": 2}}
	unit := &StructuralUnit{Meta: map[string]any{"page": 7}, Parent: parent}

	page := ResolvePage(unit)
	require.NotNil(t, page)
	assert.Equal(t, 7, *page)
}

func TestResolvePage_WalksAncestorsNearestFirst(t *testing.T) {
	grandparent := &StructuralUnit{Meta: map[string]any{"page_number": 1}}
	parent := &StructuralUnit{Meta: map[string]any{"pageno": 5}, Parent: grandparent}
	unit := &StructuralUnit{Parent: parent}

	page := ResolvePage(unit)
	require.NotNil(t, page)
	assert.Equal(t, 5, *page, "nearest ancestor's page wins")
}

func TestResolvePage_AcceptsNumericVariants(t *testing.T) {
	for _, v := range []any{12, int32(12), int64(12), float64(12), "12", " 12 "} {
		page := ResolvePage(&StructuralUnit{Meta: map[string]any{"page": v}})
		require.NotNil(t, page, "value %#v", v)
		assert.Equal(t, 12, *page)
	}
}

func TestResolvePage_NoneAnywhere(t *testing.T) {
	unit := &StructuralUnit{Parent: &StructuralUnit{Meta: map[string]any{"title": "Intro"}}}
	assert.Nil(t, ResolvePage(unit))
}

func TestResolveHeadings_RootToLeafOrder(t *testing.T) {
	grandparent := &StructuralUnit{Meta: map[string]any{"title": "Section 1"}}
	parent := &StructuralUnit{Meta: map[string]any{"title": "1.2 Requirements"}, Parent: grandparent}
	unit := &StructuralUnit{Meta: map[string]any{"heading": "Security"}, Parent: parent}

	// Ancestors are visited nearest-first but front-inserted, so the result
	// reads root to leaf.
	assert.Equal(t,
		[]string{"Section 1", "1.2 Requirements", "Security"},
		ResolveHeadings(unit))
}

func TestResolveHeadings_DeduplicatesAcrossLevels(t *testing.T) {
	parent := &StructuralUnit{Meta: map[string]any{"title": "Scope"}}
	unit := &StructuralUnit{Meta: map[string]any{"heading": "Scope", "section": "Scope of Work"}, Parent: parent}

	assert.Equal(t, []string{"Scope", "Scope of Work"}, ResolveHeadings(unit))
}

func TestResolveHeadings_ListValuesJoined(t *testing.T) {
	unit := &StructuralUnit{Meta: map[string]any{"headings": []string{"Part II", "Evaluation"}}}
	assert.Equal(t, []string{"Part II > Evaluation"}, ResolveHeadings(unit))

	unit = &StructuralUnit{Meta: map[string]any{"headings": []any{"Part II", "Evaluation"}}}
	assert.Equal(t, []string{"Part II > Evaluation"}, ResolveHeadings(unit))
}

func TestResolveHeadings_DepthBounded(t *testing.T) {
	// Build a chain deeper than the walk limit; the farthest titles must be
	// cut off rather than looping or flooding the breadcrumb.
	root := &StructuralUnit{Meta: map[string]any{"title": "Too Far"}}
	node := root
	for i := 0; i < maxAncestorLevels; i++ {
		node = &StructuralUnit{Parent: node}
	}
	unit := &StructuralUnit{Meta: map[string]any{"heading": "Leaf"}, Parent: node}

	assert.Equal(t, []string{"Leaf"}, ResolveHeadings(unit))
}

func TestResolveHeadings_EmptyAndNilValuesSkipped(t *testing.T) {
	unit := &StructuralUnit{Meta: map[string]any{"title": "", "caption": nil, "name": "  "}}
	assert.Empty(t, ResolveHeadings(unit))
}
