package driven

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// Chunker splits a document into bounded chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk returns the document's chunks in document order, with ids and
	// source metadata assigned. maxChars <= 0 uses the chunker's default.
	Chunk(ctx context.Context, doc *domain.Document, maxChars int) ([]domain.Chunk, error)
}
