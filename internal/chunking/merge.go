package chunking

import "strings"

// mergeBuffer accumulates consecutive annotated units until the budget rules
// finalize it into a MergedChunk. Exactly one buffer is live at a time.
type mergeBuffer struct {
	origIndices  []int
	text         string
	contextTexts []string
	tokenCount   int
	approx       bool
	pages        []int
	headings     []string
}

func newBuffer(u AnnotatedUnit) *mergeBuffer {
	buf := &mergeBuffer{
		origIndices:  []int{u.OrigIndex},
		text:         u.Text,
		contextTexts: []string{u.ContextText},
		tokenCount:   u.TokenCount,
		approx:       u.Approx,
	}
	if u.PageNumber != nil {
		buf.pages = append(buf.pages, *u.PageNumber)
	}
	buf.headings = append(buf.headings, u.Headings...)
	return buf
}

func (b *mergeBuffer) absorb(u AnnotatedUnit) {
	b.origIndices = append(b.origIndices, u.OrigIndex)
	b.text += "\n\n" + u.Text
	b.contextTexts = append(b.contextTexts, u.ContextText)
	b.tokenCount += u.TokenCount
	b.approx = b.approx || u.Approx
	if u.PageNumber != nil {
		b.pages = append(b.pages, *u.PageNumber)
	}
	b.headings = append(b.headings, u.Headings...)
}

// finalize destroys the buffer into an immutable chunk: contextualized texts
// are joined, the first page seen wins, and headings are de-duplicated in
// first-occurrence order.
func (b *mergeBuffer) finalize() MergedChunk {
	var page *int
	if len(b.pages) > 0 {
		page = intPtr(b.pages[0])
	}
	var headings []string
	seen := make(map[string]struct{})
	for _, h := range b.headings {
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		headings = append(headings, h)
		seen[h] = struct{}{}
	}
	return MergedChunk{
		OrigIndices: b.origIndices,
		Text:        b.text,
		ContextText: strings.Join(b.contextTexts, "\n\n"),
		TokenCount:  b.tokenCount,
		Approx:      b.approx,
		PageNumber:  page,
		Headings:    headings,
	}
}

// MergeForward merges small units forward until each chunk reaches
// cfg.MinTokens, without letting a multi-unit chunk exceed cfg.MaxTokens.
//
// The loop is a state machine over one buffer and a cursor. Per iteration,
// first matching rule applies:
//
//  1. no buffer            -> start a buffer from the current unit, advance
//  2. buffer >= MinTokens  -> emit, clear buffer, cursor stays
//  3. absorbing fits       -> absorb the current unit, advance
//  4. absorbing would blow MaxTokens -> emit the undersized buffer, cursor stays
//
// A trailing buffer is always emitted, so output indices partition the input
// contiguously and completely. MaxTokens is a hard ceiling for multi-unit
// chunks only: a single unit already above it is emitted alone, unsplit.
func MergeForward(units []AnnotatedUnit, cfg Config) []MergedChunk {
	var merged []MergedChunk
	var buffer *mergeBuffer

	i := 0
	for i < len(units) {
		if buffer == nil {
			buffer = newBuffer(units[i])
			i++
			continue
		}
		if buffer.tokenCount >= cfg.MinTokens {
			merged = append(merged, buffer.finalize())
			buffer = nil
			continue
		}
		if buffer.tokenCount+units[i].TokenCount <= cfg.MaxTokens {
			buffer.absorb(units[i])
			i++
			continue
		}
		// Growing further would exceed the ceiling; an undersized chunk is
		// preferable to an oversized one.
		merged = append(merged, buffer.finalize())
		buffer = nil
	}
	if buffer != nil {
		merged = append(merged, buffer.finalize())
	}
	return merged
}
