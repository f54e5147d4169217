// Package postgres implements the driven VectorStore port on PostgreSQL
// with the pgvector extension.
//
// Ranking happens in the database: rows are ordered by cosine distance
// (the <=> operator) and reported with score 1 - distance.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/vectormath"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a pgvector-backed driven.VectorStore.
type VectorStore struct {
	pool *pgxpool.Pool
}

// NewVectorStore connects to dsn and ensures the schema exists.
func NewVectorStore(ctx context.Context, dsn string) (*VectorStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres connection string is required", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create connection pool: %w", domain.ErrVectorStoreUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", domain.ErrVectorStoreUnavailable, err)
	}

	// No arguments, so pgx sends this over the simple protocol and the
	// multi-statement script runs as one.
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to create schema: %w", domain.ErrVectorStoreUnavailable, err)
	}

	logger.Debug("Connected to postgres vector store")
	return &VectorStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *VectorStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateOrGet returns the named collection, creating it if needed.
// The spec is only recorded on creation.
func (s *VectorStore) CreateOrGet(ctx context.Context, name string, spec domain.CollectionSpec) (driven.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO collections (name, dimensions, model)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, name, spec.Dimensions, spec.Model); err != nil {
		return nil, fmt.Errorf("%w: failed to create collection %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}

	var id int64
	if err := s.pool.QueryRow(ctx, "SELECT id FROM collections WHERE name = $1", name).Scan(&id); err != nil {
		return nil, fmt.Errorf("%w: failed to open collection %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}

	return &Collection{pool: s.pool, id: id, name: name}, nil
}

// Delete drops the named collection. Embeddings go with it by cascade.
func (s *VectorStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM collections WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("%w: failed to delete collection %s: %w", domain.ErrVectorStoreUnavailable, name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

// List returns every collection's summary, ordered by name.
func (s *VectorStore) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.name, c.dimensions, c.model, c.created_at, COUNT(e.chunk_id)
		FROM collections c
		LEFT JOIN embeddings e ON e.collection_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list collections: %w", domain.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	infos := []domain.CollectionInfo{}
	for rows.Next() {
		var info domain.CollectionInfo
		var count int64
		if err := rows.Scan(&info.Name, &info.Dimensions, &info.Model, &info.CreatedAt, &count); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		info.Count = int(count)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Ensure Collection implements the interface.
var _ driven.Collection = (*Collection)(nil)

// Collection is a handle on one row of the collections table.
type Collection struct {
	pool *pgxpool.Pool
	id   int64
	name string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Info summarises the collection.
func (c *Collection) Info(ctx context.Context) (*domain.CollectionInfo, error) {
	info := domain.CollectionInfo{Name: c.name}
	var count int64

	err := c.pool.QueryRow(ctx, `
		SELECT c.dimensions, c.model, c.created_at,
			(SELECT COUNT(*) FROM embeddings e WHERE e.collection_id = c.id)
		FROM collections c
		WHERE c.id = $1
	`, c.id).Scan(&info.Dimensions, &info.Model, &info.CreatedAt, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read collection %s: %w", domain.ErrVectorStoreUnavailable, c.name, err)
	}

	info.Count = int(count)
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

// Add upserts chunks in one transaction.
func (c *Collection) Add(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrVectorStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var dims int
	err = tx.QueryRow(ctx, "SELECT dimensions FROM collections WHERE id = $1 FOR UPDATE", c.id).Scan(&dims)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", c.name, err)
	}

	learned := dims == 0
	dims, err = vectormath.Validate(chunks, dims)
	if err != nil {
		return err
	}
	if learned && dims > 0 {
		if _, err := tx.Exec(ctx, "UPDATE collections SET dimensions = $1 WHERE id = $2", dims, c.id); err != nil {
			return fmt.Errorf("failed to record dimensions: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for i := range chunks {
		metadata := chunks[i].Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		batch.Queue(`
			INSERT INTO embeddings (collection_id, chunk_id, position, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (collection_id, chunk_id) DO UPDATE SET
				position = EXCLUDED.position,
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding
		`, c.id, chunks[i].ID, chunks[i].Position, chunks[i].Content, metadata,
			pgvector.NewVector(chunks[i].Embedding))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert embeddings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit: %w", domain.ErrVectorStoreUnavailable, err)
	}
	return nil
}

// Query returns up to k entries nearest to vector by cosine distance.
// Ties keep chunk position order.
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

	rows, err := c.pool.Query(ctx, `
		SELECT chunk_id, content, metadata, 1 - (embedding <=> $2) AS score
		FROM embeddings
		WHERE collection_id = $1
		ORDER BY embedding <=> $2, position
		LIMIT $3
	`, c.id, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search embeddings: %w", domain.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	matches := make([]domain.Match, 0, resultCap(k, info.Count))
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ChunkID, &m.Content, &m.Metadata, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// resultCap bounds the result slice by the collection size. k is not
// capped when server.max_top_k is 0.
func resultCap(k, count int) int {
	return max(min(k, count), 0)
}
