package driven

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// VectorStore manages named collections of embedded chunks.
// At most one collection with a given name exists.
type VectorStore interface {
	// CreateOrGet opens the named collection, creating it empty with spec
	// if it does not exist.
	CreateOrGet(ctx context.Context, name string, spec domain.CollectionSpec) (Collection, error)

	// Delete drops the named collection and all its entries.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error

	// List returns every collection's summary, ordered by name.
	List(ctx context.Context) ([]domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}

// Collection is one named set of (id, text, embedding, metadata) entries.
// A handle is invalid once its collection has been deleted.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Info summarises the collection.
	Info(ctx context.Context) (*domain.CollectionInfo, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Add stores chunks with their embeddings in one call.
	// Every chunk must carry an ID and an embedding of the collection's
	// dimensions, otherwise domain.ErrDimensionMismatch or
	// domain.ErrInvalidInput is returned.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Query returns up to k entries nearest to vector by cosine similarity,
	// most similar first. An empty collection yields an empty slice.
	Query(ctx context.Context, vector []float32, k int) ([]domain.Match, error)
}
