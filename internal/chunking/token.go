package chunking

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/MayTheStar/EVAL/pkg/logger"
)

// DefaultEncoding matches the cl100k_base BPE used by the embedding models.
const DefaultEncoding = "cl100k_base"

// TokenCounter maps text to an integer token count. The primary path encodes
// with tiktoken; when the encoding could not be loaded, Count degrades to a
// word-count approximation so budget arithmetic never stalls on zero weights.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the named BPE encoding. A load failure is not fatal:
// the counter stays usable in fallback mode and the degradation is logged once
// as a quality signal.
func NewTokenCounter(encoding string) *TokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Error(err, "chunking: tokenizer %q unavailable, falling back to word counts", encoding)
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

// Count returns the token count for text and whether it is a fallback
// approximation. Fallback counts are not numerically comparable to BPE counts.
// Any text, including empty text, weighs at least one token so a unit never
// merges for free.
func (c *TokenCounter) Count(text string) (n int, approx bool) {
	if c.enc != nil {
		n = len(c.enc.Encode(text, nil, nil))
		if n < 1 {
			n = 1
		}
		return n, false
	}
	n = len(strings.Fields(text))
	if n < 1 {
		n = 1
	}
	return n, true
}
