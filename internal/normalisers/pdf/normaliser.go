// Package pdf provides a normaliser for PDF documents backed by
// github.com/ledongthuc/pdf. Text is extracted page by page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds the first-line title heuristic.
const maxTitleLength = 200

// Extraction is the text and document info read from a PDF.
type Extraction struct {
	Pages []string
	Title string
}

// Extractor reads text from PDF bytes.
type Extractor interface {
	Extract(content []byte) (*Extraction, error)
}

// Normaliser handles PDF documents.
type Normaliser struct {
	extractor Extractor
}

// New creates a PDF normaliser using the built-in extractor.
func New() *Normaliser {
	return &Normaliser{extractor: libExtractor{}}
}

// NewWithExtractor creates a PDF normaliser with a custom extractor.
func NewWithExtractor(extractor Extractor) *Normaliser {
	return &Normaliser{extractor: extractor}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page. Pages are separated by a
// blank line and blank pages are dropped. The page count is recorded
// under "pages".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	ext, err := n.extractor.Extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf %s: %v", domain.ErrInvalidInput, raw.URI, err)
	}

	pages := make([]string, 0, len(ext.Pages))
	for _, p := range ext.Pages {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	content := strings.Join(pages, "\n\n")

	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = extractTitle(content, raw)
	}

	extra := map[string]any{
		"format": "pdf",
		"pages":  len(ext.Pages),
	}

	doc := normalisers.NewDocument(raw, title, content, extra)
	return &driven.NormaliseResult{Document: doc}, nil
}

// extractTitle uses the first short non-empty line, else the filename.
func extractTitle(content string, raw *domain.RawDocument) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) < maxTitleLength {
			return line
		}
	}
	return normalisers.Title(raw)
}

// libExtractor reads PDFs with ledongthuc/pdf.
type libExtractor struct{}

// Extract parses the document in memory. The parser panics on some
// malformed inputs, so panics are turned into errors.
func (libExtractor) Extract(content []byte) (ext *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			ext, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	ext = &Extraction{
		Pages: make([]string, 0, reader.NumPage()),
		Title: reader.Trailer().Key("Info").Key("Title").Text(),
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			ext.Pages = append(ext.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		ext.Pages = append(ext.Pages, text)
	}

	return ext, nil
}
