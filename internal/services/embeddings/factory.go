package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
)

// NewFromConfig builds an EmbeddingService for the configured backend.
// The dimension is fixed here, before any collection is created.
func NewFromConfig(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	cfg := &config.Embedding
	timeout := config.EmbeddingTimeout()

	switch cfg.Provider {
	case "local":
		b := newLocalBackend(cfg.Endpoint, cfg.Model, logger)
		return NewService(b, cfg.Dimension, timeout, logger), nil

	case "openai":
		b := newOpenAIBackend(cfg.APIKey, cfg.Endpoint, cfg.Model, logger)
		return NewService(b, cfg.Dimension, timeout, logger), nil

	case "gemini":
		b, err := newGeminiBackend(ctx, cfg.APIKey, cfg.Model, cfg.Dimension, logger)
		if err != nil {
			return nil, err
		}
		return NewService(b, cfg.Dimension, timeout, logger), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
