package domain

// DefaultMaxResults is the result count used when a caller does not set one.
const DefaultMaxResults = 5

// Query is one retrieval request.
type Query struct {
	// Question is the natural-language query text.
	Question string

	// MaxResults is the maximum number of results. Must be at least 1.
	MaxResults int
}

// ScoredCandidate is one ranked result of a retrieval call.
// Candidates are owned by the call that created them and never persisted.
type ScoredCandidate struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Metadata is the chunk's metadata as stored.
	Metadata ChunkMetadata `json:"metadata"`

	// VectorDistance is the store's reported dissimilarity.
	VectorDistance float64 `json:"distance"`

	// VectorScore is 1 - VectorDistance.
	VectorScore float64 `json:"vector_score"`

	// KeywordScore is the query-term coverage in [0, 1].
	KeywordScore float64 `json:"keyword_score"`

	// RelevanceScore is the fused score used for ranking.
	RelevanceScore float64 `json:"relevance_score"`
}

// NearestHit is one neighbour returned by a vector store query.
type NearestHit struct {
	// ID is the chunk identifier.
	ID string

	// Content is the stored chunk text.
	Content string

	// Metadata is the stored chunk metadata.
	Metadata ChunkMetadata

	// Distance is the dissimilarity to the query vector. Lower is closer.
	Distance float64
}

// VectorRecord is one entry submitted to a vector store.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata ChunkMetadata
}

// CollectionInfo describes the vector store collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"collection_name"`

	// Count is the number of stored chunks.
	Count int `json:"document_count"`

	// Backend names the store implementation, e.g. "sqlite".
	Backend string `json:"backend"`

	// Location is the database path or server URL.
	Location string `json:"location,omitempty"`
}

// Stats summarises the retrieval configuration and corpus size.
type Stats struct {
	// Collection describes the vector store.
	Collection CollectionInfo `json:"database_info"`

	// EmbeddingModel names the embedding model in use.
	EmbeddingModel string `json:"embedding_model"`

	// SearchAlgorithm describes the ranking method.
	SearchAlgorithm string `json:"search_algorithm"`
}
