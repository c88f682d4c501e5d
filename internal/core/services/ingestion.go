package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultWatchDebounce is how long Watch waits after the last change
// before re-running ingestion.
const DefaultWatchDebounce = 500 * time.Millisecond

var errNoWatcher = errors.New("no watcher configured")

// IngestionService drives documents from a source through normalisation
// and chunking, then embeds and stores the resulting chunks as one batch.
type IngestionService struct {
	source   driven.DocumentSource
	watcher  driven.DocumentWatcher
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	store    driven.VectorStore

	debounce time.Duration

	// mu serialises ingestion runs so watch-triggered and manual runs
	// never interleave their upserts.
	mu sync.Mutex
}

// NewIngestionService creates a new ingestion service.
// The watcher is optional; without it Watch returns an error.
func NewIngestionService(
	source driven.DocumentSource,
	watcher driven.DocumentWatcher,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestionService {
	return &IngestionService{
		source:   source,
		watcher:  watcher,
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		debounce: DefaultWatchDebounce,
	}
}

// Ingest processes every supported document under dir.
//
// Each document is read, normalised and chunked on its own; a failure is
// recorded in its outcome and the run moves on. The chunks that survive
// are validated, embedded and upserted together, and any failure at that
// stage is returned for the whole batch.
func (s *IngestionService) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingestion")

	// 1. Make sure the documents directory exists
	created, err := s.source.Prepare(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", dir, err)
	}
	if created {
		logger.Warn("Documents directory %s did not exist and was created", dir)
		return &domain.IngestReport{DirectoryCreated: true}, nil
	}

	// 2. Discover documents
	files, err := s.source.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	logger.Info("Found %d documents in %s", len(files), dir)

	// 3. Load and chunk each document, recording per-document outcomes
	report := &domain.IngestReport{Documents: make([]domain.DocumentOutcome, 0, len(files))}
	var chunks []domain.Chunk

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docChunks, err := s.processFile(ctx, file)
		outcome := domain.DocumentOutcome{SourceFile: file.Name, FilePath: file.Path}
		if err != nil {
			if isContextError(err) {
				return nil, err
			}
			logger.Warn("Skipping %s: %v", file.Path, err)
			outcome.Err = err
		} else {
			logger.Debug("Processed %s: %d chunks", file.Path, len(docChunks))
			outcome.Chunks = len(docChunks)
			chunks = append(chunks, docChunks...)
		}
		report.Documents = append(report.Documents, outcome)
	}

	if len(chunks) == 0 {
		return report, nil
	}

	// 4. Validate the whole batch before anything is submitted
	if err := ValidateChunks(chunks); err != nil {
		return nil, err
	}

	// 5. Embed all chunk texts
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		return nil, &domain.EmbeddingError{Documents: report.ProcessedFiles(), Cause: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &domain.EmbeddingError{
			Documents: report.ProcessedFiles(),
			Cause:     fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks)),
		}
	}

	// 6. Submit as one batch
	records := make([]domain.VectorRecord, len(chunks))
	for i := range chunks {
		if len(vectors[i]) == 0 {
			return nil, &domain.EmbeddingError{
				Documents: []string{chunks[i].Metadata.FilePath},
				Cause:     fmt.Errorf("empty vector for chunk %d", chunks[i].Metadata.ChunkIndex),
			}
		}
		records[i] = domain.VectorRecord{
			ID:       chunks[i].ID,
			Vector:   vectors[i],
			Content:  chunks[i].Content,
			Metadata: chunks[i].Metadata,
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		if isContextError(err) {
			return nil, err
		}
		return nil, &domain.VectorStoreError{Op: "upsert", Cause: err}
	}

	report.TotalChunks = len(records)
	logger.Info("Stored %d chunks from %d documents", report.TotalChunks, len(report.ProcessedFiles()))
	return report, nil
}

func (s *IngestionService) processFile(ctx context.Context, file domain.FileInfo) ([]domain.Chunk, error) {
	raw, err := s.source.Read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}

	doc := result.Document
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	return chunks, nil
}

// ValidateChunks checks that every chunk carries an identifier and the
// mandatory metadata, and that no identifier repeats within the batch.
func ValidateChunks(chunks []domain.Chunk) error {
	owners := make(map[string]string, len(chunks))

	for i := range chunks {
		c := &chunks[i]

		missing := c.Metadata.MissingFields()
		if c.ID == "" {
			missing = append([]string{"id"}, missing...)
		}
		if len(missing) > 0 {
			return &domain.IncompleteMetadataError{
				ChunkID:  c.ID,
				FilePath: c.Metadata.FilePath,
				Missing:  missing,
			}
		}

		if first, dup := owners[c.ID]; dup {
			return &domain.DuplicateChunkIDError{
				ID:        c.ID,
				FilePaths: []string{first, c.Metadata.FilePath},
			}
		}
		owners[c.ID] = c.Metadata.FilePath
	}

	return nil
}

// Watch runs Ingest once, then again each time the watcher reports a
// change and the directory has been quiet for the debounce interval.
// Each run's result goes to onReport. Watch returns nil when ctx ends.
func (s *IngestionService) Watch(
	ctx context.Context, dir string, onReport func(*domain.IngestReport, error),
) error {
	if s.watcher == nil {
		return fmt.Errorf("watch %s: %w", dir, errNoWatcher)
	}
	if onReport == nil {
		onReport = func(*domain.IngestReport, error) {}
	}

	report, err := s.Ingest(ctx, dir)
	if ctx.Err() != nil {
		return nil
	}
	onReport(report, err)

	changes, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for changes", dir)

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("Change detected: %s %s", change.Type, change.Path)
			timer.Reset(s.debounce)
			pending = true

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false

			report, err := s.Ingest(ctx, dir)
			if ctx.Err() != nil {
				return nil
			}
			onReport(report, err)
		}
	}
}

// Inventory lists the supported files under dir, creating it if missing.
func (s *IngestionService) Inventory(ctx context.Context, dir string) (*domain.Inventory, error) {
	inventory := &domain.Inventory{Directory: dir, Files: []domain.FileInfo{}}

	created, err := s.source.Prepare(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", dir, err)
	}
	if created {
		return inventory, nil
	}

	files, err := s.source.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	for _, f := range files {
		inventory.Files = append(inventory.Files, f)
		inventory.TotalSize += f.Size
	}
	return inventory, nil
}

// Clear removes every stored chunk.
func (s *IngestionService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return &domain.VectorStoreError{Op: "clear", Cause: err}
	}
	logger.Info("Cleared all stored chunks")
	return nil
}
