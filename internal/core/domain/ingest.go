package domain

import "fmt"

// DocumentOutcome is the result of ingesting a single document.
type DocumentOutcome struct {
	// SourceFile is the document's base name.
	SourceFile string `json:"source_file"`

	// FilePath is the path the document was read from.
	FilePath string `json:"file_path"`

	// Chunks is the number of chunks produced. Zero on failure.
	Chunks int `json:"chunks"`

	// Err is the failure for this document, nil on success.
	Err error `json:"-"`
}

// OK reports whether the document was ingested.
func (o DocumentOutcome) OK() bool {
	return o.Err == nil
}

// IngestReport aggregates the per-document outcomes of one ingestion run.
type IngestReport struct {
	// Documents holds one outcome per discovered document, in walk order.
	Documents []DocumentOutcome `json:"documents"`

	// TotalChunks is the number of chunks submitted to the store.
	TotalChunks int `json:"total_chunks"`

	// DirectoryCreated is set when the documents directory did not exist.
	DirectoryCreated bool `json:"directory_created,omitempty"`
}

// ProcessedFiles returns the source files that were ingested successfully.
func (r *IngestReport) ProcessedFiles() []string {
	files := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		if d.OK() {
			files = append(files, d.SourceFile)
		}
	}
	return files
}

// Failed returns the outcomes that recorded an error.
func (r *IngestReport) Failed() []DocumentOutcome {
	var failed []DocumentOutcome
	for _, d := range r.Documents {
		if !d.OK() {
			failed = append(failed, d)
		}
	}
	return failed
}

// Message returns a one-line summary suitable for end users.
func (r *IngestReport) Message() string {
	switch {
	case r.DirectoryCreated:
		return "Documents directory created. Add documents and run ingestion again."
	case len(r.Documents) == 0:
		return "No documents to process."
	case len(r.Failed()) > 0:
		return fmt.Sprintf("%d document chunks processed; %d of %d documents failed.",
			r.TotalChunks, len(r.Failed()), len(r.Documents))
	default:
		return fmt.Sprintf("%d document chunks processed successfully.", r.TotalChunks)
	}
}

// Inventory lists the supported files in a documents directory.
type Inventory struct {
	// Directory is the scanned directory.
	Directory string `json:"documents_directory"`

	// Files holds one entry per supported file.
	Files []FileInfo `json:"files"`

	// TotalSize is the sum of all file sizes in bytes.
	TotalSize int64 `json:"total_size"`
}
