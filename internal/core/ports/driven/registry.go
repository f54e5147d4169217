package driven

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// NormaliserRegistry dispatches raw documents to a normaliser by MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the matching normaliser.
	// Returns domain.ErrUnsupportedType when none matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
