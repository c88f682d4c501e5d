// Package storage provides the factory that selects a vector store
// backend from settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/chroma"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// CreateVectorStore opens the backend named in settings. The embedder is
// only used by backends that may compute vectors themselves.
func CreateVectorStore(
	ctx context.Context,
	settings *domain.StoreSettings,
	embedder driven.EmbeddingService,
) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: store settings are required", domain.ErrInvalidInput)
	}

	collection := settings.Collection
	if collection == "" {
		collection = domain.DefaultCollectionName
	}

	switch settings.Backend {
	case domain.StoreBackendMemory:
		return memory.NewVectorStore(collection), nil

	case domain.StoreBackendSQLite, "":
		path := settings.Path
		if path == "" {
			path = sqlite.DefaultPath
		}
		store, err := sqlite.NewVectorStore(path, collection)
		if err != nil {
			return nil, &domain.VectorStoreError{Op: "open", Cause: err}
		}
		return store, nil

	case domain.StoreBackendChroma:
		store, err := chroma.NewVectorStore(ctx, chroma.Config{
			URL:        settings.URL,
			Collection: collection,
			Embedder:   embedder,
		})
		if err != nil {
			return nil, &domain.VectorStoreError{Op: "open", Cause: err}
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
