package domain

import "time"

// Mandatory chunk metadata keys as they appear in stores and API payloads.
const (
	MetaSourceFile  = "source_file"
	MetaFilePath    = "file_path"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
)

// Document represents the extracted plain text of one source file.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the file path the document was read from.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains normaliser-specific key-value pairs.
	Metadata map[string]any

	// ModifiedAt is the source file's modification time.
	ModifiedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Chunks are immutable once created and only removed by a full clear.
type Chunk struct {
	// ID is the stable identifier for the chunk.
	ID string

	// Content is the text content of this chunk. Never empty after trimming.
	Content string

	// Metadata holds the positional fields every chunk must carry.
	Metadata ChunkMetadata

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// ChunkMetadata is the structured metadata attached to every chunk.
// The four positional fields are mandatory; Extra carries optional fields.
type ChunkMetadata struct {
	// SourceFile is the original document name, e.g. "guide.md".
	SourceFile string `json:"source_file"`

	// FilePath is the path the document was loaded from.
	FilePath string `json:"file_path"`

	// ChunkIndex is the 0-based position within the source document.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks produced from the source document.
	TotalChunks int `json:"total_chunks"`

	// Extra holds optional fields such as mime_type or title.
	Extra map[string]any `json:"extra,omitempty"`
}

// MissingFields returns the names of mandatory fields that are unset or
// inconsistent. An index outside [0, TotalChunks) counts as missing.
func (m ChunkMetadata) MissingFields() []string {
	var missing []string
	if m.SourceFile == "" {
		missing = append(missing, MetaSourceFile)
	}
	if m.FilePath == "" {
		missing = append(missing, MetaFilePath)
	}
	if m.TotalChunks <= 0 {
		missing = append(missing, MetaTotalChunks)
	}
	if m.ChunkIndex < 0 || (m.TotalChunks > 0 && m.ChunkIndex >= m.TotalChunks) {
		missing = append(missing, MetaChunkIndex)
	}
	return missing
}

// Map flattens the metadata into a single map, mandatory keys first.
// Extra keys never override the mandatory ones.
func (m ChunkMetadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	out[MetaSourceFile] = m.SourceFile
	out[MetaFilePath] = m.FilePath
	out[MetaChunkIndex] = m.ChunkIndex
	out[MetaTotalChunks] = m.TotalChunks
	return out
}

// ChunkMetadataFromMap rebuilds structured metadata from a flat map.
// Integer fields accept any numeric representation stores commonly return.
func ChunkMetadataFromMap(src map[string]any) ChunkMetadata {
	m := ChunkMetadata{}
	for k, v := range src {
		switch k {
		case MetaSourceFile:
			m.SourceFile, _ = v.(string)
		case MetaFilePath:
			m.FilePath, _ = v.(string)
		case MetaChunkIndex:
			m.ChunkIndex = toInt(v)
		case MetaTotalChunks:
			m.TotalChunks = toInt(v)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return m
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
