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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/vectormath"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// DBFileName is the database file created inside the storage directory.
const DBFileName = "isoguide.db"

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a SQLite-backed driven.VectorStore.
type VectorStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewVectorStore opens (creating if needed) the database in dataDir.
func NewVectorStore(dataDir string) (*VectorStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: storage directory is required", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// WAL for concurrent readers; foreign_keys is per connection, so it goes in the DSN.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrVectorStoreUnavailable, err)
	}

	s := &VectorStore{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrVectorStoreUnavailable, err)
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

// migrate runs all pending migrations, each in its own transaction.
func (s *VectorStore) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.inTx(context.Background(), func(tx *sql.Tx) error {
			_, err := tx.Exec(string(content))
			return err
		}); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateOrGet returns the named collection, creating it if needed.
// The spec is only recorded on creation.
func (s *VectorStore) CreateOrGet(ctx context.Context, name string, spec domain.CollectionSpec) (driven.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, dimensions, model, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, name, spec.Dimensions, spec.Model, s.now().UTC()); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name).Scan(&id)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening collection %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}

	return &Collection{store: s, id: id, name: name}, nil
}

// Delete drops the named collection and its embeddings in one transaction.
func (s *VectorStore) Delete(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("finding collection %s: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE collection_id = ?", id); err != nil {
			return fmt.Errorf("deleting embeddings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
		return nil
	})
}

// List returns every collection's summary, ordered by name.
func (s *VectorStore) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.dimensions, c.model, c.created_at, COUNT(e.chunk_id)
		FROM collections c
		LEFT JOIN embeddings e ON e.collection_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing collections: %w", domain.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	infos := []domain.CollectionInfo{}
	for rows.Next() {
		var info domain.CollectionInfo
		var createdAt sql.NullTime
		if err := rows.Scan(&info.Name, &info.Dimensions, &info.Model, &createdAt, &info.Count); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		info.CreatedAt = createdAt.Time
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// inTx runs fn in a transaction, committing on success.
func (s *VectorStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Collection ====================

// Ensure Collection implements the interface.
var _ driven.Collection = (*Collection)(nil)

// Collection is a handle on one row of the collections table.
// It is bound to the row id, so a handle opened before a delete keeps
// reporting domain.ErrNotFound even if the name is recreated.
type Collection struct {
	store *VectorStore
	id    int64
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Info summarises the collection.
func (c *Collection) Info(ctx context.Context) (*domain.CollectionInfo, error) {
	info := domain.CollectionInfo{Name: c.name}
	var createdAt sql.NullTime

	err := c.store.db.QueryRowContext(ctx, `
		SELECT c.dimensions, c.model, c.created_at,
			(SELECT COUNT(*) FROM embeddings e WHERE e.collection_id = c.id)
		FROM collections c
		WHERE c.id = ?
	`, c.id).Scan(&info.Dimensions, &info.Model, &createdAt, &info.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading collection %s: %w", domain.ErrVectorStoreUnavailable, c.name, err)
	}

	info.CreatedAt = createdAt.Time
	return &info, nil
}

// Count returns the number of stored entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// Add stores chunks with their embeddings in one transaction.
// Re-adding an id replaces it.
func (c *Collection) Add(ctx context.Context, chunks []domain.Chunk) error {
	return c.store.inTx(ctx, func(tx *sql.Tx) error {
		var dims int
		err := tx.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE id = ?", c.id).Scan(&dims)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading collection %s: %w", c.name, err)
		}

		learned := dims == 0
		dims, err = vectormath.Validate(chunks, dims)
		if err != nil {
			return err
		}

		if learned && dims > 0 {
			if _, err := tx.ExecContext(ctx,
				"UPDATE collections SET dimensions = ? WHERE id = ?", dims, c.id); err != nil {
				return fmt.Errorf("recording dimensions: %w", err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO embeddings (collection_id, chunk_id, position, content, metadata, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(collection_id, chunk_id) DO UPDATE SET
				position = excluded.position,
				content = excluded.content,
				metadata = excluded.metadata,
				embedding = excluded.embedding
		`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i := range chunks {
			metadataJSON, err := json.Marshal(chunks[i].Metadata)
			if err != nil {
				return fmt.Errorf("marshalling metadata: %w", err)
			}
			if _, err := stmt.ExecContext(ctx,
				c.id, chunks[i].ID, chunks[i].Position, chunks[i].Content,
				string(metadataJSON), float32SliceToBytes(chunks[i].Embedding)); err != nil {
				return fmt.Errorf("inserting chunk %s: %w", chunks[i].ID, err)
			}
		}
		return nil
	})
}

// Query returns up to k entries nearest to vector, scanning the whole
// collection. Ties keep chunk position order.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]domain.Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info.Count == 0 {
		return []domain.Match{}, nil
	}
	if info.Dimensions != 0 && len(vector) != info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), info.Dimensions)
	}

	entries, err := c.entries(ctx)
	if err != nil {
		return nil, err
	}
	return vectormath.TopK(vector, entries, k)
}

// entries loads every stored vector in position order.
func (c *Collection) entries(ctx context.Context) ([]vectormath.Entry, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT chunk_id, content, metadata, embedding
		FROM embeddings
		WHERE collection_id = ?
		ORDER BY position, chunk_id
	`, c.id)
	if err != nil {
		return nil, fmt.Errorf("%w: querying embeddings: %w", domain.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	var entries []vectormath.Entry
	for rows.Next() {
		var entry vectormath.Entry
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&entry.ID, &entry.Content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		if metadataJSON != "" && metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata of %s: %w", entry.ID, err)
			}
		}
		entry.Vector = bytesToFloat32Slice(blob)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ==================== Helper Functions ====================

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
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
