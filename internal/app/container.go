package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/ai"
	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/isoguide/internal/connectors/filesystem"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
	"github.com/custodia-labs/isoguide/internal/core/services"
	"github.com/custodia-labs/isoguide/internal/logger"
	"github.com/custodia-labs/isoguide/internal/normalisers"
	"github.com/custodia-labs/isoguide/internal/postprocessors/chunker"
)

// Container holds the services built for one process.
// The embedding service and store are created once and shared.
type Container struct {
	Settings *domain.Settings
	Embedder driven.EmbeddingService
	Store    driven.VectorStore
	Index    driving.IndexService
	Ask      driving.AskService
}

// New builds a container from settings.
func New(ctx context.Context, settings *domain.Settings) (*Container, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrConfigInvalid)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, &settings.Storage)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	c, err := Assemble(ctx, settings, embedder, store)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, err
	}
	return c, nil
}

// Assemble wires services over an existing embedder and store.
// The container takes ownership of both.
func Assemble(
	ctx context.Context,
	settings *domain.Settings,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) (*Container, error) {
	loader := services.NewDocumentLoader(filesystem.New(), normalisers.Default())
	chunk := chunker.New(chunker.WithMaxChars(settings.Chunking.MaxChars))

	index := services.NewIndexService(loader, chunk, embedder, store, domain.IndexOptions{
		SourcePath:     settings.Document.Path,
		DocumentName:   settings.Document.Name,
		CollectionName: settings.Storage.Collection,
		MaxChars:       settings.Chunking.MaxChars,
	})

	spec := domain.CollectionSpec{Dimensions: embedder.Dimensions(), Model: embedder.ModelName()}
	collection, err := store.CreateOrGet(ctx, settings.Storage.Collection, spec)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", settings.Storage.Collection, err)
	}

	ask := services.NewAskService(embedder, collection, services.WithMaxTopK(settings.Server.MaxTopK))
	if err := ask.CheckModel(ctx); err != nil {
		logger.Warn("%v", err)
	}

	return &Container{
		Settings: settings,
		Embedder: embedder,
		Store:    store,
		Index:    index,
		Ask:      ask,
	}, nil
}

// OpenStore opens the configured vector store backend.
func OpenStore(ctx context.Context, settings *domain.StorageSettings) (driven.VectorStore, error) {
	logger.Debug("Opening %s vector store", settings.Backend)

	switch settings.Backend {
	case domain.StorageSQLite, "":
		store, err := sqlite.NewVectorStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
		}
		return store, nil
	case domain.StoragePostgres:
		return postgres.NewVectorStore(ctx, settings.PostgresDSN)
	case domain.StorageMemory:
		return memory.NewVectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrConfigInvalid, settings.Backend)
	}
}

// Close releases the store and the embedding service.
func (c *Container) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Embedder != nil {
		errs = append(errs, c.Embedder.Close())
	}
	return errors.Join(errs...)
}
