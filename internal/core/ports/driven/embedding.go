package driven

import "context"

// EmbeddingService maps text to fixed-length vectors. Indexing and asking
// must go through the same model, since vectors from different models are
// not comparable.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is 0 until known. Adapters without a fixed size learn it
	// from the first response.
	Dimensions() int

	ModelName() string

	// Ping sends a one-word request to check the model is reachable.
	Ping(ctx context.Context) error

	Close() error
}
