package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions with the nearest stored chunks.
// It holds one embedding service and one collection handle for its lifetime
// and keeps no state between calls.
type AskService struct {
	embedder   driven.EmbeddingService
	collection driven.Collection
	maxTopK    int
}

// AskOption configures an AskService.
type AskOption func(*AskService)

// WithMaxTopK caps top_k; larger requests are invalid input.
// Zero disables the cap.
func WithMaxTopK(n int) AskOption {
	return func(s *AskService) {
		if n >= 0 {
			s.maxTopK = n
		}
	}
}

// NewAskService creates an ask service over an open collection.
func NewAskService(embedder driven.EmbeddingService, collection driven.Collection, opts ...AskOption) *AskService {
	s := &AskService{
		embedder:   embedder,
		collection: collection,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask embeds the question and returns the nearest chunk as the answer.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	logger.Section("Ask")
	logger.Debug("Question: %q, top_k: %d", req.Question, req.TopK)

	if err := req.Validate(s.maxTopK); err != nil {
		logger.Debug("Rejected: %v", err)
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.collection.Query(ctx, vector, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.collection.Name(), err)
	}

	logger.Debug("%d matches", len(matches))
	for i := range matches {
		logger.Debug("  [%d] %s score=%.4f", i+1, matches[i].ChunkID, matches[i].Score)
	}

	return domain.NewAnswer(req.Question, matches), nil
}

// Info summarises the collection being queried.
func (s *AskService) Info(ctx context.Context) (*domain.CollectionInfo, error) {
	info, err := s.collection.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", s.collection.Name(), err)
	}
	return info, nil
}

// CheckModel warns when the collection was built with a different embedding
// model than the one configured for queries. Scores across models are
// meaningless, but an empty or legacy collection has no recorded model.
func (s *AskService) CheckModel(ctx context.Context) error {
	info, err := s.Info(ctx)
	if err != nil {
		return err
	}
	if info.Model != "" && info.Model != s.embedder.ModelName() {
		logger.Structured().Warn("collection built with a different embedding model",
			"collection", info.Name,
			"collection_model", info.Model,
			"query_model", s.embedder.ModelName())
	}
	if info.Dimensions != 0 && info.Dimensions != s.embedder.Dimensions() {
		return fmt.Errorf("%w: collection %s has %d dimensions, model %s produces %d",
			domain.ErrDimensionMismatch, info.Name, info.Dimensions, s.embedder.ModelName(), s.embedder.Dimensions())
	}
	return nil
}
