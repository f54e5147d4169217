package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService rebuilds the vector collection from the source document.
//
// A rebuild drops the old collection before the new one is populated; there
// is no swap, so a failure during Add leaves the collection partially filled.
// Loading and embedding happen before the drop, so a missing document or an
// unreachable model never empties an existing collection.
type IndexService struct {
	loader   *DocumentLoader
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	store    driven.VectorStore
	defaults domain.IndexOptions
	now      func() time.Time
}

// NewIndexService creates a new index service.
// defaults fills any zero field of the options passed to Build.
func NewIndexService(
	loader *DocumentLoader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	defaults domain.IndexOptions,
) *IndexService {
	if defaults.DocumentName == "" {
		defaults.DocumentName = domain.DefaultDocumentName
	}
	if defaults.CollectionName == "" {
		defaults.CollectionName = domain.DefaultCollectionName
	}
	return &IndexService{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		defaults: defaults,
		now:      time.Now,
	}
}

// Build loads, chunks and embeds the document, then replaces the collection.
func (s *IndexService) Build(ctx context.Context, opts domain.IndexOptions) (*domain.IndexReport, error) {
	opts = s.resolve(opts)
	start := s.now()

	logger.Section("Index Build")
	logger.Debug("Source: %s, collection: %s, max chars: %d", opts.SourcePath, opts.CollectionName, opts.MaxChars)

	if opts.SourcePath == "" {
		return nil, fmt.Errorf("%w: source path is required", domain.ErrInvalidInput)
	}

	doc, err := s.loader.Load(ctx, opts.SourcePath, opts.DocumentName)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	chunks, err := s.chunker.Chunk(ctx, doc, opts.MaxChars)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Info("%d chunks created", len(chunks))

	if err := s.embedChunks(ctx, doc.Name, chunks); err != nil {
		return nil, err
	}

	spec := domain.CollectionSpec{
		Dimensions: s.embedder.Dimensions(),
		Model:      s.embedder.ModelName(),
	}

	collection, replaced, err := s.recreate(ctx, opts.CollectionName, spec)
	if err != nil {
		return nil, err
	}

	if len(chunks) > 0 {
		if err := collection.Add(ctx, chunks); err != nil {
			return nil, fmt.Errorf("add chunks to %s: %w", opts.CollectionName, err)
		}
	}

	count, err := collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", opts.CollectionName, err)
	}
	logger.Info("Collection %s now holds %d entries", opts.CollectionName, count)

	return &domain.IndexReport{
		Collection: opts.CollectionName,
		SourcePath: opts.SourcePath,
		Chunks:     count,
		Replaced:   replaced,
		Dimensions: spec.Dimensions,
		Model:      spec.Model,
		Duration:   s.now().Sub(start),
	}, nil
}

// Verify embeds question and queries the default collection.
// An empty collection yields no matches and no error.
func (s *IndexService) Verify(ctx context.Context, question string, topK int) ([]domain.Match, error) {
	if err := (domain.AskRequest{Question: question, TopK: topK}).Validate(0); err != nil {
		return nil, err
	}

	spec := domain.CollectionSpec{Dimensions: s.embedder.Dimensions(), Model: s.embedder.ModelName()}
	collection, err := s.store.CreateOrGet(ctx, s.defaults.CollectionName, spec)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", s.defaults.CollectionName, err)
	}

	count, err := collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", s.defaults.CollectionName, err)
	}
	if count == 0 {
		logger.Warn("Collection %s is empty", s.defaults.CollectionName)
		return []domain.Match{}, nil
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := collection.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.defaults.CollectionName, err)
	}
	return matches, nil
}

// embedChunks embeds every chunk with one batch call and normalises ids and
// metadata so the stored tuples do not depend on the chunker's choices.
func (s *IndexService) embedChunks(ctx context.Context, source string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		logger.Warn("Document produced no chunks, collection will be empty")
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	logger.Debug("Embedding %d chunks with %s", len(texts), s.embedder.ModelName())
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i := range chunks {
		chunks[i].ID = domain.ChunkID(i)
		chunks[i].Position = i
		chunks[i].Embedding = vectors[i]
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]string, 1)
		}
		chunks[i].Metadata[domain.SourceMetadataKey] = source
	}
	return nil
}

// recreate returns an empty collection named name, dropping any existing
// one that holds entries or records a different model or dimensions.
// The second result is the number of entries dropped.
func (s *IndexService) recreate(
	ctx context.Context, name string, spec domain.CollectionSpec,
) (driven.Collection, int, error) {
	collection, err := s.store.CreateOrGet(ctx, name, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("open collection %s: %w", name, err)
	}

	info, err := collection.Info(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("inspect collection %s: %w", name, err)
	}

	stale := (info.Dimensions != 0 && spec.Dimensions != 0 && info.Dimensions != spec.Dimensions) ||
		(spec.Model != "" && info.Model != spec.Model)
	if info.Count == 0 && !stale {
		return collection, 0, nil
	}

	logger.Info("Collection %s has %d entries (model %q, %d dims), deleting",
		name, info.Count, info.Model, info.Dimensions)
	if err := s.store.Delete(ctx, name); err != nil {
		return nil, 0, fmt.Errorf("delete collection %s: %w", name, err)
	}

	collection, err = s.store.CreateOrGet(ctx, name, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("recreate collection %s: %w", name, err)
	}
	return collection, info.Count, nil
}

func (s *IndexService) resolve(opts domain.IndexOptions) domain.IndexOptions {
	if opts.SourcePath == "" {
		opts.SourcePath = s.defaults.SourcePath
	}
	if opts.DocumentName == "" {
		opts.DocumentName = s.defaults.DocumentName
	}
	if opts.CollectionName == "" {
		opts.CollectionName = s.defaults.CollectionName
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = s.defaults.MaxChars
	}
	return opts
}
