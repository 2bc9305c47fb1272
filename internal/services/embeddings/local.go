package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// localBackend talks to a llama-server embedding endpoint over localhost HTTP
type localBackend struct {
	endpoint string
	model    string
	client   *http.Client
	logger   arbor.ILogger
}

type llamaEmbeddingRequest struct {
	Content string `json:"content"`
}

type llamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// newLocalBackend creates a backend for a llama-server /embedding endpoint
func newLocalBackend(endpoint, model string, logger arbor.ILogger) *localBackend {
	return &localBackend{
		endpoint: endpoint,
		model:    model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// embedBatch embeds texts one at a time; llama-server's native endpoint takes
// a single content per request
func (b *localBackend) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := b.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (b *localBackend) embedOne(ctx context.Context, text string) ([]float32, error) {
	jsonData, err := json.Marshal(llamaEmbeddingRequest{Content: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/embedding", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llama-server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llama-server returned status %d: %s", resp.StatusCode, string(body))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// llama-server returns either {"embedding": [...]} or a bare array
	// depending on version
	var objResp llamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &objResp); err == nil && len(objResp.Embedding) > 0 {
		return objResp.Embedding, nil
	}
	var arrResp []float32
	if err := json.Unmarshal(bodyBytes, &arrResp); err == nil && len(arrResp) > 0 {
		return arrResp, nil
	}

	return nil, fmt.Errorf("llama-server returned empty embedding")
}

func (b *localBackend) modelName() string {
	return b.model
}

func (b *localBackend) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
