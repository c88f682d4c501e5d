// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted plain text of one source file
//   - Chunk: An overlapping slice of a document, the unit of retrieval
//   - ChunkMetadata: The mandatory positional metadata every chunk carries
//   - ScoredCandidate: One ranked retrieval result, call-local
//   - IngestReport: Per-document outcomes of an ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
