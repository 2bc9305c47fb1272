package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiVectors(t *testing.T) {
	result := &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{0.1, 0.2}},
			{Values: []float32{0.3, 0.4}},
		},
	}

	vectors, err := geminiVectors(result, 2)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestGeminiVectorsNilResponse(t *testing.T) {
	vectors, err := geminiVectors(nil, 3)
	require.Error(t, err)
	assert.Nil(t, vectors)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGeminiVectorsCountMismatch(t *testing.T) {
	result := &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1}}},
	}
	_, err := geminiVectors(result, 2)
	assert.Error(t, err)
}

func TestGeminiVectorsEmptyEmbedding(t *testing.T) {
	result := &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{0.1}},
			{},
		},
	}
	_, err := geminiVectors(result, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}
