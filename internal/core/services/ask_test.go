package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/isoguide/internal/core/domain"
)

const cleanDeskDoc = "A clean desk policy requires employees to secure sensitive documents.\n\n" +
	"Passwords must be at least 12 characters."

// openCollection returns a memory collection holding the given texts as
// chunk-0..n-1, embedded with embedder.
func openCollection(t *testing.T, embedder *hashEmbedder, texts ...string) *memory.Collection {
	t.Helper()
	ctx := context.Background()

	store := memory.NewVectorStore()
	c, err := store.CreateOrGet(ctx, domain.DefaultCollectionName, domain.CollectionSpec{
		Dimensions: embedder.Dimensions(),
		Model:      embedder.ModelName(),
	})
	require.NoError(t, err)

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ID: domain.ChunkID(i), Content: text, Embedding: embedder.vector(text)}
	}
	if len(chunks) > 0 {
		require.NoError(t, c.Add(ctx, chunks))
	}
	return c.(*memory.Collection)
}

func TestAskService_CleanDeskExample(t *testing.T) {
	embedder := newHashEmbedder()
	c := openCollection(t, embedder,
		"A clean desk policy requires employees to secure sensitive documents.",
		"Passwords must be at least 12 characters.")
	service := NewAskService(embedder, c)

	answer, err := service.Ask(context.Background(), domain.AskRequest{
		Question: "What is the clean desk policy?",
		TopK:     1,
	})

	require.NoError(t, err)
	assert.Equal(t, "What is the clean desk policy?", answer.Question)
	assert.Equal(t, "A clean desk policy requires employees to secure sensitive documents.", answer.Answer)
	assert.Equal(t, []string{answer.Answer}, answer.Contexts)
}

func TestAskService_ContextsOrderedBySimilarity(t *testing.T) {
	embedder := newHashEmbedder()
	texts := []string{
		"Backups shall be tested regularly.",
		"Access rights shall be reviewed.",
		"Access rights to information shall be reviewed regularly.",
	}
	c := openCollection(t, embedder, texts...)
	service := NewAskService(embedder, c)

	answer, err := service.Ask(context.Background(), domain.AskRequest{
		Question: texts[2],
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, texts[2], answer.Answer)
	require.Len(t, answer.Contexts, 3)
	require.Len(t, answer.Matches, 3)
	for i := 1; i < len(answer.Matches); i++ {
		assert.GreaterOrEqual(t, answer.Matches[i-1].Score, answer.Matches[i].Score)
		assert.Equal(t, answer.Matches[i].Content, answer.Contexts[i])
	}
}

func TestAskService_EmptyCollectionReturnsSentinel(t *testing.T) {
	embedder := newHashEmbedder()
	service := NewAskService(embedder, openCollection(t, embedder))

	answer, err := service.Ask(context.Background(), domain.AskRequest{Question: "anything", TopK: 3})

	require.NoError(t, err)
	assert.Equal(t, domain.NoGuidanceAnswer, answer.Answer)
	assert.NotNil(t, answer.Contexts)
	assert.Empty(t, answer.Contexts)
}

func TestAskService_InvalidRequestTouchesNothing(t *testing.T) {
	tests := []struct {
		name string
		req  domain.AskRequest
	}{
		{"empty question and zero top_k", domain.AskRequest{Question: "", TopK: 0}},
		{"blank question", domain.AskRequest{Question: "   ", TopK: 3}},
		{"zero top_k", domain.AskRequest{Question: "q", TopK: 0}},
		{"negative top_k", domain.AskRequest{Question: "q", TopK: -2}},
		{"top_k above cap", domain.AskRequest{Question: "q", TopK: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := newHashEmbedder()
			collection := &failingCollection{err: errors.New("must not be called")}
			service := NewAskService(embedder, collection, WithMaxTopK(10))

			answer, err := service.Ask(context.Background(), tt.req)

			assert.Nil(t, answer)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, embedder.embedCalls)
			assert.Equal(t, 0, collection.queries)
		})
	}
}

func TestAskService_BackendErrorsSurface(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		collection := &failingCollection{err: domain.ErrVectorStoreUnavailable}
		service := NewAskService(newHashEmbedder(), collection)

		answer, err := service.Ask(context.Background(), domain.AskRequest{Question: "q", TopK: 3})

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
		assert.Equal(t, 1, collection.queries)
	})

	t.Run("embedding failure", func(t *testing.T) {
		embedder := newHashEmbedder()
		embedder.err = domain.ErrEmbeddingUnavailable
		collection := &failingCollection{}
		service := NewAskService(embedder, collection)

		answer, err := service.Ask(context.Background(), domain.AskRequest{Question: "q", TopK: 3})

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Equal(t, 0, collection.queries)
	})
}

func TestAskService_Info(t *testing.T) {
	embedder := newHashEmbedder()
	service := NewAskService(embedder, openCollection(t, embedder, "one", "two"))

	info, err := service.Info(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCollectionName, info.Name)
	assert.Equal(t, 2, info.Count)
	assert.Equal(t, "hash-test", info.Model)
}

func TestAskService_CheckModel(t *testing.T) {
	t.Run("matching model", func(t *testing.T) {
		embedder := newHashEmbedder()
		service := NewAskService(embedder, openCollection(t, embedder, "x"))
		assert.NoError(t, service.CheckModel(context.Background()))
	})

	t.Run("different dimensions", func(t *testing.T) {
		builder := newHashEmbedder()
		c := openCollection(t, builder, "x")

		querier := &hashEmbedder{dims: 32}
		service := NewAskService(querier, c)

		assert.ErrorIs(t, service.CheckModel(context.Background()), domain.ErrDimensionMismatch)
	})
}
