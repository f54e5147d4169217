package driven

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// DocumentSource fetches the bytes of a source document.
type DocumentSource interface {
	// Fetch reads the document at path and detects its MIME type.
	// A missing document is reported as domain.ErrDocumentNotFound.
	Fetch(ctx context.Context, path string) (*domain.RawDocument, error)
}
