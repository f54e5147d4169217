// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/embedding"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "all-minilm"
	DefaultTimeout   = 60 * time.Second
	DefaultBatchSize = 64
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: all-minilm).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size. Zero means learn it from
	// the first response.
	Dimensions int

	// BatchSize caps the inputs sent per request (default: 64).
	BatchSize int

	// RequestsPerSecond paces requests. Zero means unlimited.
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	client    *http.Client
	baseURL   string
	model     string
	batchSize int
	pacer     *embedding.Pacer
	dims      *embedding.Dimensions
}

// embedRequest is the /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the /api/embed response format.
type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
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

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   NormaliseBaseURL(cfg.BaseURL),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		pacer:     embedding.NewPacer(cfg.RequestsPerSecond),
		dims:      embedding.NewDimensions(cfg.Dimensions),
	}
}

// NormaliseBaseURL accepts OLLAMA_HOST style values such as "0.0.0.0:11434"
// and returns a URL with a scheme and no trailing slash.
func NormaliseBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/")
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

// embed sends one /api/embed request and converts the float64 response.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := s.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, values := range resp.Embeddings {
		out[i] = make([]float32, len(values))
		for j, v := range values {
			out[i][j] = float32(v)
		}
	}

	if err := s.dims.Check(s.model, len(out[0])); err != nil {
		return nil, err
	}
	return out, nil
}

// post sends body as JSON and decodes a 200 response into out. Transport
// failures and non-200 responses wrap domain.ErrEmbeddingUnavailable.
func (s *EmbeddingService) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: ollama error (status %d): %s",
			domain.ErrEmbeddingUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dims.Get()
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a single word. Unlike listing /api/tags this also fails when
// the model has not been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.embed(ctx, []string{"ping"})
	return err
}

func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
