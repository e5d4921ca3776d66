package retriever

// Filters represents optional constraints applied during search.
type Filters struct {
	DocIDs []int64
}

// Hit represents a single search result from Milvus with associated metadata.
type Hit struct {
	ChunkID    int64   `json:"chunk_id"`
	Score      float32 `json:"score"`
	DocID      int64   `json:"doc_id"`
	PageNumber int32   `json:"page_number"`
	ChunkIndex int32   `json:"chunk_index"`
	Content    string  `json:"content"`
}
