package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestCreateVectorStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		settings    *domain.StoreSettings
		wantBackend string
		wantName    string
		wantErr     error
	}{
		{
			name:        "memory with default collection",
			settings:    &domain.StoreSettings{Backend: domain.StoreBackendMemory},
			wantBackend: "memory",
			wantName:    domain.DefaultCollectionName,
		},
		{
			name: "sqlite",
			settings: &domain.StoreSettings{
				Backend:    domain.StoreBackendSQLite,
				Path:       filepath.Join(t.TempDir(), "db", "docqa.db"),
				Collection: "runbooks",
			},
			wantBackend: "sqlite",
			wantName:    "runbooks",
		},
		{
			name:     "unknown backend",
			settings: &domain.StoreSettings{Backend: "qdrant"},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:    "nil settings",
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := CreateVectorStore(ctx, tt.settings, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, store)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			info, err := store.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, info.Backend)
			assert.Equal(t, tt.wantName, info.Name)
		})
	}
}

func TestCreateVectorStore_ChromaUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := CreateVectorStore(ctx, &domain.StoreSettings{
		Backend: domain.StoreBackendChroma,
		URL:     "http://127.0.0.1:1",
	}, nil)

	var storeErr *domain.VectorStoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Nil(t, store)
}
