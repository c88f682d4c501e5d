// Package markdown provides a normaliser that reduces Markdown to readable
// text while keeping code.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	fencePattern       = regexp.MustCompile("(?m)^[ \\t]*(```|~~~)[^\\n]*$\\n?")
	imagePattern       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkPattern        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingPattern     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	boldPattern        = regexp.MustCompile(`\*\*(\S(?:[^\n]*?\S)?)\*\*`)
	blockquotePattern  = regexp.MustCompile(`(?m)^>[ \t]?`)
	rulePattern        = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	listMarkerPattern  = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	htmlCommentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	blankLinesPattern  = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific, preferred over plaintext
}

// Normalise converts a markdown document to a normalised document.
// The title comes from the first H1 heading, else the filename.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := plaintext.Decode(raw.Content)

	title := extractMarkdownTitle(text)
	if title == "" {
		title = normalisers.Title(raw)
	}

	doc := normalisers.NewDocument(raw, title, stripMarkdown(text), map[string]any{"format": "markdown"})
	return &driven.NormaliseResult{Document: doc}, nil
}

// extractMarkdownTitle returns the text of the first H1 heading, or "".
func extractMarkdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// stripMarkdown removes formatting syntax. Code blocks and inline code keep
// their content. Underscores and single asterisks are left alone since
// they are common in identifiers and code.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = htmlCommentPattern.ReplaceAllString(content, "")
	content = fencePattern.ReplaceAllString(content, "")
	content = imagePattern.ReplaceAllString(content, "$1")
	content = linkPattern.ReplaceAllString(content, "$1")
	content = rulePattern.ReplaceAllString(content, "")
	content = headingPattern.ReplaceAllString(content, "")
	content = boldPattern.ReplaceAllString(content, "$1")
	content = blockquotePattern.ReplaceAllString(content, "")
	content = listMarkerPattern.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, "`", "")
	content = blankLinesPattern.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
