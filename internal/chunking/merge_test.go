package chunking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitsWithCounts(counts ...int) []AnnotatedUnit {
	units := make([]AnnotatedUnit, len(counts))
	for i, n := range counts {
		units[i] = AnnotatedUnit{
			OrigIndex:  i,
			Text:       fmt.Sprintf("unit %d", i),
			TokenCount: n,
		}
		units[i].ContextText = units[i].Text
	}
	return units
}

func TestMergeForward_SmallUnitsMergeThenRemainder(t *testing.T) {
	// [100, 450, 700] with 512..1024: 100+450 crosses the floor, 700 trails.
	chunks := MergeForward(unitsWithCounts(100, 450, 700), Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 2)
	assert.Equal(t, []int{0, 1}, chunks[0].OrigIndices)
	assert.Equal(t, 550, chunks[0].TokenCount)
	assert.Equal(t, []int{2}, chunks[1].OrigIndices)
	assert.Equal(t, 700, chunks[1].TokenCount)
	assert.Equal(t, "unit 0\n\nunit 1", chunks[0].Text)
}

func TestMergeForward_UnitsAboveFloorEmitAlone(t *testing.T) {
	chunks := MergeForward(unitsWithCounts(600, 600), Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 2)
	assert.Equal(t, []int{0}, chunks[0].OrigIndices)
	assert.Equal(t, []int{1}, chunks[1].OrigIndices)
}

func TestMergeForward_TrailingRemainderBelowFloor(t *testing.T) {
	chunks := MergeForward(unitsWithCounts(300, 300, 300), Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 2)
	assert.Equal(t, []int{0, 1}, chunks[0].OrigIndices)
	assert.Equal(t, 600, chunks[0].TokenCount)
	// The trailing chunk never reaches the floor but is emitted anyway.
	assert.Equal(t, []int{2}, chunks[1].OrigIndices)
	assert.Equal(t, 300, chunks[1].TokenCount)
}

func TestMergeForward_CeilingBeatsFloor(t *testing.T) {
	// 400+700 > 1024, so the undersized buffer is emitted rather than grown.
	chunks := MergeForward(unitsWithCounts(400, 700), Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 2)
	assert.Equal(t, 400, chunks[0].TokenCount)
	assert.Equal(t, 700, chunks[1].TokenCount)
}

func TestMergeForward_OversizedAtomicUnitEmittedUnsplit(t *testing.T) {
	chunks := MergeForward(unitsWithCounts(50, 3000, 50), Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 2)
	// 50 absorbs 3000 is over budget, so 50 flushes; 3000 then starts its own
	// buffer, is already past the floor, and emits alone despite the ceiling.
	assert.Equal(t, []int{0}, chunks[0].OrigIndices)
	assert.Equal(t, []int{1, 2}, chunks[1].OrigIndices)
	assert.Equal(t, 3050, chunks[1].TokenCount)
}

func TestMergeForward_Empty(t *testing.T) {
	assert.Empty(t, MergeForward(nil, DefaultConfig()))
}

func TestMergeForward_PartitionAndTokenSumProperties(t *testing.T) {
	cases := [][]int{
		{1},
		{10, 10, 10, 10, 10},
		{500, 12, 512, 1, 1, 1, 1024, 2000, 3, 700, 700, 9},
		{1024, 1024, 1024},
		{511, 1, 511, 1},
	}
	cfg := Config{MinTokens: 512, MaxTokens: 1024}

	for _, counts := range cases {
		units := unitsWithCounts(counts...)
		chunks := MergeForward(units, cfg)

		var flattened []int
		for _, ch := range chunks {
			sum := 0
			for _, idx := range ch.OrigIndices {
				sum += counts[idx]
			}
			assert.Equal(t, sum, ch.TokenCount, "chunk token count must equal member sum")
			if len(ch.OrigIndices) > 1 {
				assert.LessOrEqual(t, ch.TokenCount, cfg.MaxTokens,
					"multi-unit chunks must respect the ceiling")
			}
			flattened = append(flattened, ch.OrigIndices...)
		}

		require.Len(t, flattened, len(counts), "every input index must appear exactly once")
		for i, idx := range flattened {
			assert.Equal(t, i, idx, "indices must stay contiguous and ordered")
		}

		// Soft floor: all but the last chunk reach MinTokens unless they were
		// capped by the ceiling against their successor.
		for c, ch := range chunks[:max(0, len(chunks)-1)] {
			if ch.TokenCount >= cfg.MinTokens {
				continue
			}
			next := chunks[c+1].OrigIndices[0]
			assert.Greater(t, ch.TokenCount+counts[next], cfg.MaxTokens,
				"an undersized non-final chunk is only legal when growing it would blow the ceiling")
		}
	}
}

func TestMergeForward_MetadataAggregation(t *testing.T) {
	p3, p4 := 3, 4
	units := []AnnotatedUnit{
		{OrigIndex: 0, Text: "a", ContextText: "ctx a", TokenCount: 100, PageNumber: &p3,
			Headings: []string{"Scope", "Deliverables"}},
		{OrigIndex: 1, Text: "b", ContextText: "ctx b", TokenCount: 100, PageNumber: &p4,
			Headings: []string{"Deliverables", "Timeline"}},
		{OrigIndex: 2, Text: "c", ContextText: "ctx c", TokenCount: 400},
	}
	chunks := MergeForward(units, Config{MinTokens: 512, MaxTokens: 1024})

	require.Len(t, chunks, 1)
	got := chunks[0]
	assert.Equal(t, []int{0, 1, 2}, got.OrigIndices)
	require.NotNil(t, got.PageNumber)
	assert.Equal(t, 3, *got.PageNumber, "first page seen wins")
	assert.Equal(t, []string{"Scope", "Deliverables", "Timeline"}, got.Headings)
	assert.Equal(t, "ctx a\n\nctx b\n\nctx c", got.ContextText)
}
