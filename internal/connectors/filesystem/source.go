// Package filesystem reads documents from a local directory and watches it
// for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/docx"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// mimeTypes maps supported extensions to the MIME type handed to the
// normalisers.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".docx": docx.MIMEType,
}

// Source lists and reads the supported files directly inside a documents
// directory. Subdirectories and hidden files are ignored.
type Source struct{}

// NewSource creates a filesystem source.
func NewSource() *Source {
	return &Source{}
}

// SupportedExtensions returns the accepted extensions, sorted.
func (s *Source) SupportedExtensions() []string {
	exts := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Prepare creates dir when it is missing.
func (s *Source) Prepare(_ context.Context, dir string) (bool, error) {
	dir = LocalPath(dir)

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
		}
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create %s: %w", dir, err)
		}
		return true, nil
	default:
		return false, err
	}
}

// List returns the supported files in dir ordered by name.
func (s *Source) List(ctx context.Context, dir string) ([]domain.FileInfo, error) {
	dir = LocalPath(dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, dir)
		}
		return nil, err
	}

	files := make([]domain.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || !Supported(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}

		files = append(files, domain.FileInfo{
			Name:       entry.Name(),
			Path:       filepath.Join(dir, entry.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	return files, nil
}

// Read loads a listed file. The modification time travels in metadata
// under normalisers.MetaModifiedAt.
func (s *Source) Read(ctx context.Context, file domain.FileInfo) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := LocalPath(file.Path)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, err
	}

	modified := file.ModifiedAt
	if modified.IsZero() {
		if info, err := os.Stat(path); err == nil {
			modified = info.ModTime()
		}
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: MIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			normalisers.MetaModifiedAt: modified,
		},
	}, nil
}

// Supported reports whether name is a visible file with an accepted
// extension. Extensions match case-insensitively.
func Supported(name string) bool {
	base := filepath.Base(name)
	if isHidden(base) {
		return false
	}
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(base))]
	return ok
}

// MIMEType returns the MIME type for a supported file, or
// application/octet-stream.
func MIMEType(name string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
