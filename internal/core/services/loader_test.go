package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

type failingRegistry struct{ err error }

func (r failingRegistry) Normalise(context.Context, *domain.RawDocument) (*domain.Document, error) {
	return nil, r.err
}
func (failingRegistry) Register(driven.Normaliser)   {}
func (failingRegistry) SupportedMIMETypes() []string { return nil }

func TestDocumentLoader_Load(t *testing.T) {
	loader := NewDocumentLoader(&mockSource{files: map[string]string{"a.txt": "text"}}, passthroughRegistry{})
	loadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	loader.now = func() time.Time { return loadedAt }

	doc, err := loader.Load(context.Background(), "a.txt", "iso27001")

	require.NoError(t, err)
	assert.Equal(t, "iso27001", doc.Name)
	assert.Equal(t, "a.txt", doc.Path)
	assert.Equal(t, "text", doc.Content)
	assert.Equal(t, "text/plain", doc.MIMEType)
	assert.Equal(t, loadedAt, doc.LoadedAt)
}

func TestDocumentLoader_MissingFile(t *testing.T) {
	loader := NewDocumentLoader(&mockSource{files: map[string]string{}}, passthroughRegistry{})

	_, err := loader.Load(context.Background(), "missing.txt", "iso27001")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentLoader_NormaliseError(t *testing.T) {
	loader := NewDocumentLoader(
		&mockSource{files: map[string]string{"a.bin": "x"}},
		failingRegistry{err: domain.ErrUnsupportedType},
	)

	_, err := loader.Load(context.Background(), "a.bin", "iso27001")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "a.bin")
	assert.False(t, errors.Is(err, domain.ErrDocumentNotFound))
}
