// Package openai provides an embedding service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/embedding"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel     = "text-embedding-3-small"
	DefaultTimeout   = 60 * time.Second
	DefaultBatchSize = 100
)

// ErrAPIKeyNotSet is returned when no API key is configured.
var ErrAPIKeyNotSet = errors.New("openai: API key is required (set OPENAI_API_KEY)")

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Empty means the OpenAI default.
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only applicable to text-embedding-3-* models.
	Dimensions int

	// BatchSize caps the inputs sent per request (default: 100).
	BatchSize int

	// RequestsPerSecond paces requests. Zero means unlimited.
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using the OpenAI API.
type EmbeddingService struct {
	client     openai.Client
	model     string
	batchSize int
	pacer     *embedding.Pacer
	dims      *embedding.Dimensions
}

// NewEmbeddingService creates a new OpenAI embedding service.
// The client never retries; a failed request is reported to the caller.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = modelDimensions[cfg.Model]
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &EmbeddingService{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		pacer:     embedding.NewPacer(cfg.RequestsPerSecond),
		dims:      embedding.NewDimensions(dimensions),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, BatchSize inputs per request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for i, batch := range embedding.Batches(texts, s.batchSize) {
		logger.Debug("Embedding batch %d (%d texts) with %s", i+1, len(batch), s.model)
		vectors, err := s.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, vectors...)
	}
	return embeddings, nil
}

// embed sends one embeddings request and orders the results by index.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	// Only text-embedding-3-* models accept a dimensions parameter.
	if dims := s.dims.Get(); dims > 0 && strings.HasPrefix(s.model, "text-embedding-3-") {
		params.Dimensions = openai.Int(int64(dims))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding index %d out of range", data.Index)
		}
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		embeddings[data.Index] = vector
	}

	if err := s.dims.Check(s.model, len(embeddings[0])); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims.Get()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key and model by fetching the model record.
// This is a lightweight check that runs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
