package driving

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// AskService answers questions from the persisted collection.
type AskService interface {
	// Ask returns the nearest chunk as the answer with the top-K texts as
	// contexts. Invalid requests fail with domain.ErrInvalidInput before any
	// retrieval; an empty collection yields domain.NoGuidanceAnswer.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)

	// Info summarises the collection being queried.
	Info(ctx context.Context) (*domain.CollectionInfo, error)
}
