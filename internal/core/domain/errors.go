package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Retrieval Errors.

	// ErrEmptyQuery indicates the query is blank after whitespace normalisation.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmbeddingFailure indicates the embedding service failed or returned no vector.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrVectorStoreFailure indicates a vector store query or write failed.
	ErrVectorStoreFailure = errors.New("vector store failure")

	// Ingestion Errors.

	// ErrIncompleteMetadata indicates a chunk is missing mandatory metadata.
	ErrIncompleteMetadata = errors.New("incomplete chunk metadata")

	// ErrDuplicateChunkID indicates two chunks in one batch share an identifier.
	ErrDuplicateChunkID = errors.New("duplicate chunk id")
)

// EmbeddingError reports a failed embedding call together with the text
// that triggered it. It matches ErrEmbeddingFailure with errors.Is.
type EmbeddingError struct {
	// Query is the normalised query, empty for batch embedding.
	Query string

	// Documents lists the files whose chunks were being embedded.
	Documents []string

	// Cause is the underlying capability error, nil if no vector came back.
	Cause error
}

func (e *EmbeddingError) Error() string {
	var b strings.Builder
	b.WriteString(ErrEmbeddingFailure.Error())
	switch {
	case e.Query != "":
		fmt.Fprintf(&b, " for query %q", e.Query)
	case len(e.Documents) > 0:
		fmt.Fprintf(&b, " for %d document(s)", len(e.Documents))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Is reports whether target is ErrEmbeddingFailure.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingFailure
}

// Unwrap returns the underlying cause.
func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// VectorStoreError reports a failed vector store operation.
// It matches ErrVectorStoreFailure with errors.Is.
type VectorStoreError struct {
	// Op is the store operation, e.g. "query" or "upsert".
	Op string

	// Query is the normalised query for read operations.
	Query string

	// Cause is the error returned by the store.
	Cause error
}

func (e *VectorStoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrVectorStoreFailure, e.Op)
	if e.Query != "" {
		msg += fmt.Sprintf(" for query %q", e.Query)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is ErrVectorStoreFailure.
func (e *VectorStoreError) Is(target error) bool {
	return target == ErrVectorStoreFailure
}

// Unwrap returns the underlying cause.
func (e *VectorStoreError) Unwrap() error {
	return e.Cause
}

// IncompleteMetadataError reports a chunk missing one or more mandatory
// metadata fields. It matches ErrIncompleteMetadata with errors.Is.
type IncompleteMetadataError struct {
	ChunkID  string
	FilePath string
	Missing  []string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("%s: chunk %q from %q missing %s",
		ErrIncompleteMetadata, e.ChunkID, e.FilePath, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrIncompleteMetadata.
func (e *IncompleteMetadataError) Is(target error) bool {
	return target == ErrIncompleteMetadata
}

// DuplicateChunkIDError reports an identifier shared by two chunks of the
// same batch. It matches ErrDuplicateChunkID with errors.Is.
type DuplicateChunkIDError struct {
	ID        string
	FilePaths []string
}

func (e *DuplicateChunkIDError) Error() string {
	return fmt.Sprintf("%s: %q produced by %s", ErrDuplicateChunkID, e.ID, strings.Join(e.FilePaths, " and "))
}

// Is reports whether target is ErrDuplicateChunkID.
func (e *DuplicateChunkIDError) Is(target error) bool {
	return target == ErrDuplicateChunkID
}
