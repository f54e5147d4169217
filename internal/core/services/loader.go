package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// DocumentLoader reads a source document and normalises it to text.
type DocumentLoader struct {
	source      driven.DocumentSource
	normalisers driven.NormaliserRegistry
	now         func() time.Time
}

// NewDocumentLoader creates a loader over a source and normaliser registry.
func NewDocumentLoader(source driven.DocumentSource, normalisers driven.NormaliserRegistry) *DocumentLoader {
	return &DocumentLoader{
		source:      source,
		normalisers: normalisers,
		now:         time.Now,
	}
}

// Load reads the document at path and returns it under the given logical name.
func (l *DocumentLoader) Load(ctx context.Context, path, name string) (*domain.Document, error) {
	logger.Debug("Loading document %s from %s", name, path)

	raw, err := l.source.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	raw.Name = name

	doc, err := l.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", path, err)
	}

	doc.Name = name
	doc.Path = path
	if doc.MIMEType == "" {
		doc.MIMEType = raw.MIMEType
	}
	doc.LoadedAt = l.now()

	logger.Debug("Loaded %d characters (%s)", len([]rune(doc.Content)), doc.MIMEType)
	return doc, nil
}
