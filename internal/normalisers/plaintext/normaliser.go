// Package plaintext provides the fallback normaliser for text files.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const utf8BOM = "\ufeff"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the bytes as UTF-8. A byte order mark is dropped and
// invalid sequences become U+FFFD.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc := normalisers.NewDocument(raw, normalisers.Title(raw), Decode(raw.Content), nil)
	return &driven.NormaliseResult{Document: doc}, nil
}

// Decode converts raw bytes to valid UTF-8 text.
func Decode(content []byte) string {
	text := strings.TrimPrefix(string(content), utf8BOM)
	return strings.ToValidUTF8(text, "\uFFFD")
}
