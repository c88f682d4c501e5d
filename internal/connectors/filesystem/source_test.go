package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/normalisers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSource_SupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".docx", ".md", ".pdf", ".txt"}, NewSource().SupportedExtensions())
}

func TestSource_Prepare(t *testing.T) {
	ctx := context.Background()
	source := NewSource()

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "documents")

		created, err := source.Prepare(ctx, dir)
		require.NoError(t, err)
		assert.True(t, created)
		assert.DirExists(t, dir)
	})

	t.Run("existing directory", func(t *testing.T) {
		created, err := source.Prepare(ctx, t.TempDir())
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("path is a file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "notes.txt", "x")

		_, err := source.Prepare(ctx, path)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSource_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, dir, "zeta.md", "# Zeta")
	writeFile(t, dir, "alpha.txt", "alpha")
	writeFile(t, dir, "GUIDE.PDF", "%PDF")
	writeFile(t, dir, "design.docx", "PK")
	writeFile(t, dir, "image.png", "png")
	writeFile(t, dir, ".hidden.md", "secret")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "deep.md", "deep")

	files, err := NewSource().List(ctx, dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"GUIDE.PDF", "alpha.txt", "design.docx", "zeta.md"}, names)

	assert.Equal(t, filepath.Join(dir, "alpha.txt"), files[1].Path)
	assert.Equal(t, int64(5), files[1].Size)
	assert.False(t, files[1].ModifiedAt.IsZero())
}

func TestSource_List_MissingDirectory(t *testing.T) {
	_, err := NewSource().List(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSource_List_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource().List(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_Read(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "setup.md", "# Setup")
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, modified, modified))

	source := NewSource()
	files, err := source.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := source.Read(context.Background(), files[0])
	require.NoError(t, err)

	assert.Equal(t, path, raw.URI)
	assert.Equal(t, "text/markdown", raw.MIMEType)
	assert.Equal(t, []byte("# Setup"), raw.Content)
	got, ok := raw.Metadata[normalisers.MetaModifiedAt].(time.Time)
	require.True(t, ok)
	assert.True(t, modified.Equal(got))
}

func TestSource_Read_FileURI(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")

	raw, err := NewSource().Read(context.Background(), domain.FileInfo{Path: "file://" + path})
	require.NoError(t, err)

	assert.Equal(t, path, raw.URI)
	assert.Equal(t, "text/plain", raw.MIMEType)
	assert.Contains(t, raw.Metadata, normalisers.MetaModifiedAt)
}

func TestSource_Read_Missing(t *testing.T) {
	_, err := NewSource().Read(context.Background(), domain.FileInfo{Path: filepath.Join(t.TempDir(), "gone.txt")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"guide.md", true},
		{"guide.MD", true},
		{"report.pdf", true},
		{"notes.txt", true},
		{"design.docx", true},
		{"/srv/docs/design.docx", true},
		{"legacy.doc", false},
		{"image.png", false},
		{"README", false},
		{".draft.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.name))
		})
	}
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", MIMEType("a.PDF"))
	assert.Equal(t, "text/markdown", MIMEType("a.md"))
	assert.Equal(t, "application/octet-stream", MIMEType("a.bin"))
}
