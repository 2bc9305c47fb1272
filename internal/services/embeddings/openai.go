package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
)

// openaiBackend uses the OpenAI embeddings API, or any OpenAI-compatible
// server (Ollama, llama.cpp, vLLM) when an endpoint override is configured
type openaiBackend struct {
	client *openai.Client
	model  string
	logger arbor.ILogger
}

// newOpenAIBackend creates an OpenAI-compatible embedding backend. An empty
// endpoint uses the official API base URL.
func newOpenAIBackend(apiKey, endpoint, model string, logger arbor.ILogger) *openaiBackend {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = endpoint
	}
	return &openaiBackend{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

func (b *openaiBackend) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(b.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d texts", len(resp.Data), len(texts))
	}

	// Response order is not guaranteed to match input order, use the index field
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func (b *openaiBackend) modelName() string {
	return b.model
}

func (b *openaiBackend) healthCheck(ctx context.Context) error {
	_, err := b.embedBatch(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embeddings API not available: %w", err)
	}
	return nil
}
