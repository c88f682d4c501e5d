package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "./chroma_db/docqa.db"

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a SQLite-backed driven.VectorStore. Each store instance
// works on one named collection inside the database file.
type VectorStore struct {
	db         *sql.DB
	path       string
	collection string
}

// NewVectorStore opens (or creates) the database at path and runs migrations.
func NewVectorStore(path, collection string) (*VectorStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if collection == "" {
		collection = domain.DefaultCollectionName
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{
		db:         db,
		path:       path,
		collection: collection,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_vectors.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or replaces records by ID in one transaction. Replaced
// records keep their original position for tie-breaking.
func (s *VectorStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM chunks WHERE collection = ?", s.collection,
	).Scan(&seq); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, content, source_file, file_path, chunk_index,
			total_chunks, extra, embedding, dimensions, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			content = excluded.content,
			source_file = excluded.source_file,
			file_path = excluded.file_path,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			extra = excluded.extra,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("sqlite: record without id")
		}
		extra, err := marshalExtra(r.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %q: %w", r.ID, err)
		}

		seq++
		if _, err := stmt.ExecContext(ctx, s.collection, r.ID, r.Content,
			r.Metadata.SourceFile, r.Metadata.FilePath, r.Metadata.ChunkIndex, r.Metadata.TotalChunks,
			extra, float32SliceToBytes(r.Vector), len(r.Vector), seq); err != nil {
			return fmt.Errorf("saving chunk %q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// QueryNearest scans the collection and returns up to k hits ordered by
// ascending cosine distance.
func (s *VectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.NearestHit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, embedding FROM chunks WHERE collection = ? ORDER BY seq", s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var ids []string
	var scored []vecmath.Scored
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		d, err := vecmath.CosineDistance(vector, bytesToFloat32Slice(blob))
		if err != nil {
			return nil, fmt.Errorf("chunk %q: %w", id, err)
		}
		scored = append(scored, vecmath.Scored{Index: len(ids), Distance: d})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	top := vecmath.TopK(scored, k)
	hits := make([]domain.NearestHit, 0, len(top))
	for _, sc := range top {
		hit, err := s.getHit(ctx, ids[sc.Index])
		if err != nil {
			return nil, err
		}
		hit.Distance = sc.Distance
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *VectorStore) getHit(ctx context.Context, id string) (domain.NearestHit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content, source_file, file_path, chunk_index, total_chunks, extra
		FROM chunks WHERE collection = ? AND id = ?
	`, s.collection, id)

	hit := domain.NearestHit{ID: id}
	var extra sql.NullString
	if err := row.Scan(&hit.Content, &hit.Metadata.SourceFile, &hit.Metadata.FilePath,
		&hit.Metadata.ChunkIndex, &hit.Metadata.TotalChunks, &extra); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return hit, fmt.Errorf("chunk %q: %w", id, domain.ErrNotFound)
		}
		return hit, fmt.Errorf("scanning chunk: %w", err)
	}

	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &hit.Metadata.Extra); err != nil {
			return hit, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return hit, nil
}

// Count returns the number of stored records in the collection.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", s.collection,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Clear removes every record from the collection.
func (s *VectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE collection = ?", s.collection); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
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
		Name:     s.collection,
		Count:    count,
		Backend:  string(domain.StoreBackendSQLite),
		Location: s.path,
	}, nil
}

func marshalExtra(extra map[string]any) (sql.NullString, error) {
	if len(extra) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// float32SliceToBytes converts a float32 slice to bytes for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return []byte{}
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes back to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
