package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/normalisers/docx"
	"github.com/custodia-labs/isoguide/internal/normalisers/html"
	"github.com/custodia-labs/isoguide/internal/normalisers/markdown"
	"github.com/custodia-labs/isoguide/internal/normalisers/pdf"
	"github.com/custodia-labs/isoguide/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to the normaliser that handles them.
// A later registration for the same MIME type replaces the earlier one.
type Registry struct {
	byMIME map[string]driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string]driven.Normaliser),
	}
}

// Default returns a registry with every built-in normaliser registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, mt := range normaliser.SupportedMIMETypes() {
		r.byMIME[baseType(mt)] = normaliser
	}
}

// Normalise dispatches raw to the normaliser for its MIME type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	normaliser, ok := r.byMIME[baseType(raw.MIMEType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return normaliser.Normalise(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// baseType drops MIME parameters such as "; charset=utf-8".
func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
