package chunking

// StructuralUnit is one leaf-level segment of a document as produced by the
// structure-aware extractor, before any budget-based merging. Parent points at
// the enclosing structural node (section, page, ...); the chain ends at nil.
type StructuralUnit struct {
	Index   int
	RawText string
	Meta    map[string]any
	Parent  *StructuralUnit
}

// AnnotatedUnit is a StructuralUnit after cleaning, token counting and
// metadata resolution. Immutable once built.
type AnnotatedUnit struct {
	OrigIndex   int
	Text        string
	ContextText string
	TokenCount  int
	Approx      bool // token count came from the word-count fallback
	PageNumber  *int
	Headings    []string
}

// MergedChunk is the final budget-bounded span handed to the embedding and
// persistence stages.
type MergedChunk struct {
	OrigIndices []int    `json:"orig_indices"`
	Text        string   `json:"text"`
	ContextText string   `json:"contextualized_text"`
	TokenCount  int      `json:"token_count"`
	Approx      bool     `json:"approx_tokens"`
	PageNumber  *int     `json:"page_number"`
	Headings    []string `json:"headings"`
}

// Config holds the merge token budget. MinTokens < MaxTokens is a caller
// precondition, enforced at config load time, not inside the engine.
type Config struct {
	MinTokens int
	MaxTokens int
}

// DefaultConfig mirrors the budget used for all-MiniLM-style embedding models.
func DefaultConfig() Config {
	return Config{
		MinTokens: 512,
		MaxTokens: 1024,
	}
}
