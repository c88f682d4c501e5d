package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentSource lists and reads candidate files from a documents directory.
type DocumentSource interface {
	// Prepare creates dir if it does not exist and reports whether it did.
	Prepare(ctx context.Context, dir string) (created bool, err error)

	// List returns the supported files under dir in a stable order.
	// A missing directory is reported with domain.ErrNotFound.
	List(ctx context.Context, dir string) ([]domain.FileInfo, error)

	// Read loads the raw bytes of one listed file.
	Read(ctx context.Context, file domain.FileInfo) (*domain.RawDocument, error)

	// SupportedExtensions returns the file extensions the source accepts.
	SupportedExtensions() []string
}

// DocumentWatcher reports changes to supported files under a directory.
type DocumentWatcher interface {
	// Watch emits changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context, dir string) (<-chan domain.DocumentChange, error)
}
