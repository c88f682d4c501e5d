// Package chroma provides a driven.VectorStore backed by a Chroma server.
package chroma

import (
	"context"
	"encoding/json"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// DefaultURL is the Chroma server address used when none is configured.
const DefaultURL = "http://localhost:8000"

// metaExtra holds the JSON-encoded optional metadata.
const metaExtra = "extra"

// Config holds configuration for the Chroma vector store.
type Config struct {
	// URL is the Chroma server address (default: http://localhost:8000).
	URL string

	// Collection is the collection name (default: developer_docs).
	Collection string

	// Embedder computes vectors when Chroma asks for them. Records and
	// queries always carry precomputed vectors.
	Embedder driven.EmbeddingService
}

// VectorStore stores chunks in a Chroma collection using cosine space.
type VectorStore struct {
	client     chroma.Client
	collection chroma.Collection
	url        string
}

// NewVectorStore connects to Chroma and gets or creates the collection.
func NewVectorStore(ctx context.Context, cfg Config) (*VectorStore, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}

	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("chroma: create client: %w", err)
	}

	opts := []chroma.CreateCollectionOption{
		chroma.WithCollectionMetadataCreate(
			chroma.NewMetadata(chroma.NewStringAttribute("hnsw:space", "cosine")),
		),
	}
	if cfg.Embedder != nil {
		opts = append(opts, chroma.WithEmbeddingFunctionCreate(&embeddingFunction{svc: cfg.Embedder}))
	}

	col, err := client.GetOrCreateCollection(ctx, cfg.Collection, opts...)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chroma: get collection %q: %w", cfg.Collection, err)
	}

	return &VectorStore{
		client:     client,
		collection: col,
		url:        cfg.URL,
	}, nil
}

// Upsert inserts or replaces records by ID.
func (s *VectorStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, len(records))
	texts := make([]string, len(records))
	metas := make([]chroma.DocumentMetadata, len(records))
	vectors := make([]embeddings.Embedding, len(records))
	for i, r := range records {
		md, err := toDocumentMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("chroma: metadata for %q: %w", r.ID, err)
		}
		ids[i] = chroma.DocumentID(r.ID)
		texts[i] = r.Content
		metas[i] = md
		vectors[i] = embeddings.NewEmbeddingFromFloat32(r.Vector)
	}

	if err := s.collection.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
		chroma.WithEmbeddings(vectors...),
	); err != nil {
		return fmt.Errorf("chroma: upsert: %w", err)
	}
	return nil
}

// QueryNearest returns up to k hits ordered by ascending distance.
func (s *VectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.NearestHit, error) {
	if k <= 0 {
		return []domain.NearestHit{}, nil
	}

	res, err := s.collection.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma: query: %w", err)
	}

	idGroups := res.GetIDGroups()
	docGroups := res.GetDocumentsGroups()
	metaGroups := res.GetMetadatasGroups()
	distGroups := res.GetDistancesGroups()
	if len(idGroups) == 0 {
		return []domain.NearestHit{}, nil
	}

	rows := make([]row, len(idGroups[0]))
	for i, id := range idGroups[0] {
		rows[i].id = string(id)
		if len(docGroups) > 0 && i < len(docGroups[0]) && docGroups[0][i] != nil {
			rows[i].content = docGroups[0][i].ContentString()
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			rows[i].meta = metaGroups[0][i]
		}
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			rows[i].distance = float64(distGroups[0][i])
		}
	}

	return buildHits(rows), nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	n, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma: count: %w", err)
	}
	return n, nil
}

// Clear removes every record from the collection.
func (s *VectorStore) Clear(ctx context.Context) error {
	res, err := s.collection.Get(ctx)
	if err != nil {
		return fmt.Errorf("chroma: list ids: %w", err)
	}

	ids := res.GetIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, chroma.WithIDsDelete(ids...)); err != nil {
		return fmt.Errorf("chroma: delete: %w", err)
	}
	return nil
}

// Info describes the collection.
func (s *VectorStore) Info(ctx context.Context) (domain.CollectionInfo, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	return domain.CollectionInfo{
		Name:     s.collection.Name(),
		Count:    count,
		Backend:  string(domain.StoreBackendChroma),
		Location: s.url,
	}, nil
}

// Close releases the HTTP client.
func (s *VectorStore) Close() error {
	return s.client.Close()
}

// row is one query result before conversion.
type row struct {
	id       string
	content  string
	meta     chroma.DocumentMetadata
	distance float64
}

func buildHits(rows []row) []domain.NearestHit {
	hits := make([]domain.NearestHit, len(rows))
	for i, r := range rows {
		hits[i] = domain.NearestHit{
			ID:       r.id,
			Content:  r.content,
			Metadata: fromDocumentMetadata(r.meta),
			Distance: r.distance,
		}
	}
	return hits
}

func toDocumentMetadata(m domain.ChunkMetadata) (chroma.DocumentMetadata, error) {
	attrs := []*chroma.MetaAttribute{
		chroma.NewStringAttribute(domain.MetaSourceFile, m.SourceFile),
		chroma.NewStringAttribute(domain.MetaFilePath, m.FilePath),
		chroma.NewIntAttribute(domain.MetaChunkIndex, int64(m.ChunkIndex)),
		chroma.NewIntAttribute(domain.MetaTotalChunks, int64(m.TotalChunks)),
	}
	if len(m.Extra) > 0 {
		data, err := json.Marshal(m.Extra)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, chroma.NewStringAttribute(metaExtra, string(data)))
	}
	return chroma.NewDocumentMetadata(attrs...), nil
}

func fromDocumentMetadata(md chroma.DocumentMetadata) domain.ChunkMetadata {
	var m domain.ChunkMetadata
	if md == nil {
		return m
	}

	m.SourceFile, _ = md.GetString(domain.MetaSourceFile)
	m.FilePath, _ = md.GetString(domain.MetaFilePath)
	if idx, ok := md.GetInt(domain.MetaChunkIndex); ok {
		m.ChunkIndex = int(idx)
	}
	if total, ok := md.GetInt(domain.MetaTotalChunks); ok {
		m.TotalChunks = int(total)
	}
	if raw, ok := md.GetString(metaExtra); ok && raw != "" {
		// Unparseable extras are dropped; the mandatory fields are intact.
		var extra map[string]any
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			logger.Debug("chroma: dropping unreadable extra metadata for %s: %v", m.FilePath, err)
		} else {
			m.Extra = extra
		}
	}
	return m
}

// embeddingFunction exposes a driven.EmbeddingService to the Chroma client.
type embeddingFunction struct {
	svc driven.EmbeddingService
}

func (f *embeddingFunction) EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error) {
	vectors, err := f.svc.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]embeddings.Embedding, len(vectors))
	for i, v := range vectors {
		out[i] = embeddings.NewEmbeddingFromFloat32(v)
	}
	return out, nil
}

func (f *embeddingFunction) EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error) {
	v, err := f.svc.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbeddingFromFloat32(v), nil
}
