package normalisers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MetaModifiedAt is the raw metadata key sources use for the file's
// modification time.
const MetaModifiedAt = "modified_at"

// NewDocument builds a normalised document from raw input. Raw metadata is
// copied, then mime_type and the given extra keys are added.
func NewDocument(raw *domain.RawDocument, title, content string, extra map[string]any) domain.Document {
	metadata := make(map[string]any, len(raw.Metadata)+len(extra)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	for k, v := range extra {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	if title != "" {
		metadata["title"] = title
	}

	modified, _ := raw.Metadata[MetaModifiedAt].(time.Time)

	return domain.Document{
		ID:         uuid.New().String(),
		URI:        raw.URI,
		Title:      title,
		Content:    content,
		Metadata:   metadata,
		ModifiedAt: modified,
	}
}

// TitleFromURI derives a readable title from a file path: the base name
// without extension, with underscores and dashes as spaces.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// Title returns the raw metadata title when a source set one, otherwise
// the title derived from the URI.
func Title(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}
	return TitleFromURI(raw.URI)
}
