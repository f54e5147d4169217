// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/custodia-labs/isoguide/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/isoguide/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ollamaHostEnv is Ollama's own variable for its listen address.
const ollamaHostEnv = "OLLAMA_HOST"

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s service unreachable (%w). Check embedding.base_url or run 'isoguide config show'",
			domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}

	logger.Debug("Embedding service ready: %s %s", settings.Provider, svc.ModelName())
	return svc, nil
}

// ValidateEmbeddingConfig creates a service from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrConfigInvalid)
	}
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%w: %s requires an API key (set OPENAI_API_KEY or embedding.api_key)",
				domain.ErrConfigInvalid, settings.Provider)
		}
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfigInvalid, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfigInvalid, settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
// Without a configured base URL, OLLAMA_HOST is honoured before the default.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv(ollamaHostEnv)
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           baseURL,
		Model:             settings.Model,
		Dimensions:        settings.ResolvedDimensions(),
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        settings.ResolvedDimensions(),
		RequestsPerSecond: settings.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}
	return svc, nil
}
