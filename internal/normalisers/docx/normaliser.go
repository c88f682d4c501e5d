// Package docx provides a normaliser for Word documents. Paragraph text is
// read from word/document.xml and the title from docProps/core.xml.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the Office Open XML word processing type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a DOCX document to a normalised document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}

	title := ""
	if core, err := readPart(reader, "docProps/core.xml"); err == nil && core != nil {
		title = parseCoreTitle(core)
	}
	if title == "" {
		title = normalisers.Title(raw)
	}

	doc := normalisers.NewDocument(raw, title, parseDocumentXML(body), map[string]any{"format": "docx"})
	return &driven.NormaliseResult{Document: doc}, nil
}

// readPart returns the bytes of the named archive member, or nil when the
// member is absent.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, name, err)
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the parts of word/document.xml we read. Table
// cells hold their own paragraphs.
type documentXML struct {
	Body struct {
		Items []bodyItem `xml:",any"`
	} `xml:"body"`
}

type bodyItem struct {
	XMLName xml.Name
	Runs    []run `xml:"r"`
	Rows    []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts paragraph text, one paragraph per line. Table
// rows become a line each with cells separated by tabs.
func parseDocumentXML(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	lines := make([]string, 0, len(doc.Body.Items))
	for _, item := range doc.Body.Items {
		switch item.XMLName.Local {
		case "p":
			lines = append(lines, runText(item.Runs))
		case "tbl":
			for _, row := range item.Rows {
				cells := make([]string, 0, len(row.Cells))
				for _, cell := range row.Cells {
					paras := make([]string, 0, len(cell.Paragraphs))
					for _, p := range cell.Paragraphs {
						paras = append(paras, runText(p.Runs))
					}
					cells = append(cells, strings.Join(paras, " "))
				}
				lines = append(lines, strings.Join(cells, "\t"))
			}
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func runText(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

func parseCoreTitle(content []byte) string {
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
