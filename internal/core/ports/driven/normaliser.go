package driven

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// Normaliser turns a raw file into document text.
// Each normaliser handles specific MIME types (e.g., PDF, plain text).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise extracts the document text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
