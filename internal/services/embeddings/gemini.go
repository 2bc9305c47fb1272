package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// geminiBackend uses the Gemini embedding API via the genai client
type geminiBackend struct {
	client    *genai.Client
	model     string
	dimension int
	logger    arbor.ILogger
}

// newGeminiBackend creates a Gemini embedding backend with a fixed output
// dimensionality
func newGeminiBackend(ctx context.Context, apiKey, model string, dimension int, logger arbor.ILogger) (*geminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding backend requires an API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiBackend{
		client:    client,
		model:     model,
		dimension: dimension,
		logger:    logger,
	}, nil
}

func (b *geminiBackend) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	outputDim := int32(b.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := b.client.Models.EmbedContent(ctx, b.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return geminiVectors(result, len(texts))
}

// geminiVectors unpacks an embedding response, rejecting nil or truncated
// responses before any field access
func geminiVectors(result *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if result == nil {
		return nil, fmt.Errorf("gemini returned an empty response for %d texts", want)
	}
	if len(result.Embeddings) != want {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(result.Embeddings), want)
	}

	vectors := make([][]float32, want)
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding at index %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (b *geminiBackend) modelName() string {
	return b.model
}

func (b *geminiBackend) healthCheck(ctx context.Context) error {
	_, err := b.embedBatch(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("gemini embeddings not available: %w", err)
	}
	return nil
}
