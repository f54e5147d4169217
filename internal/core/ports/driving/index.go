package driving

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// IndexService rebuilds the vector collection from the source document.
type IndexService interface {
	// Build loads, chunks and embeds the document, then drops and
	// recreates the collection with the new chunks.
	Build(ctx context.Context, opts domain.IndexOptions) (*domain.IndexReport, error)

	// Verify runs a retrieval against the collection as a smoke test.
	Verify(ctx context.Context, question string, topK int) ([]domain.Match, error)
}
