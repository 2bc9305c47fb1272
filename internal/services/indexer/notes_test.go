package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/services/splitter"
	"github.com/recallhq/recall/internal/storage/badger"
)

// vocabEmbedder produces deterministic presence vectors over a fixed
// vocabulary, so similarity reflects shared terms
type vocabEmbedder struct {
	vocab []string
}

func (e *vocabEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(e.vocab))
		for j, term := range e.vocab {
			if strings.Contains(lower, term) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (e *vocabEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *vocabEmbedder) Dimension() int                       { return len(e.vocab) }
func (e *vocabEmbedder) ModelName() string                    { return "vocab" }
func (e *vocabEmbedder) IsAvailable(ctx context.Context) bool { return true }

func testSetup(t *testing.T) (interfaces.VectorStorage, *common.Config) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")

	logger := arbor.NewLogger()
	manager, err := badger.NewManager(logger, &config.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager.VectorStorage(), config
}

func newTestNotes(t *testing.T, embedder interfaces.EmbeddingService) *NotesService {
	t.Helper()

	storage, config := testSetup(t)
	split, err := splitter.New(config.Splitter.ChunkSize, config.Splitter.ChunkOverlap)
	require.NoError(t, err)

	notes, err := NewNotesService(storage, embedder, split, config, arbor.NewLogger())
	require.NoError(t, err)
	return notes
}

func TestNotesIndexAndSearch(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"react", "hooks", "usestate", "usage", "intro", "golang"}}
	notes := newTestNotes(t, embedder)
	ctx := context.Background()

	content := "# Intro\nSome introduction about React Hooks.\n\n## Usage\nCall useState inside a function component."
	chunks, err := notes.Index(ctx, "/notes/a.md", content, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)

	hits, err := notes.Search(ctx, "React Hooks", 2, nil)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, "/notes/a.md", top.FilePath)
	assert.Equal(t, "a.md", top.FileName)
	assert.Contains(t, []string{"Intro", "Usage"}, top.Heading)
	assert.Greater(t, top.Score, 0.0)
	assert.Contains(t, top.Content, "React Hooks")
}

func TestNotesReindexReplacesChunks(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"alpha", "beta", "gamma", "delta"}}
	notes := newTestNotes(t, embedder)
	ctx := context.Background()

	_, err := notes.Index(ctx, "/notes/n.md", "# One\nalpha\n\n# Two\nbeta\n\n# Three\ngamma", nil)
	require.NoError(t, err)

	stats, err := notes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalFiles)

	// Re-index with fewer sections; stale chunks must not survive
	chunks, err := notes.Index(ctx, "/notes/n.md", "# Only\ndelta", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	stats, err = notes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalFiles)

	hits, err := notes.Search(ctx, "gamma", 5, nil)
	require.NoError(t, err)
	for _, hit := range hits {
		assert.NotContains(t, hit.Content, "gamma", "stale chunk leaked through re-index")
	}
}

func TestNotesDelete(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"alpha"}}
	notes := newTestNotes(t, embedder)
	ctx := context.Background()

	_, err := notes.Index(ctx, "/notes/n.md", "alpha content", nil)
	require.NoError(t, err)

	deleted, err := notes.Delete(ctx, "/notes/n.md")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Deleting again is a benign no-op
	deleted, err = notes.Delete(ctx, "/notes/n.md")
	require.NoError(t, err)
	assert.False(t, deleted)

	stats, err := notes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.False(t, stats.Indexed)
}

func TestNotesEmptyContent(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"alpha"}}
	notes := newTestNotes(t, embedder)

	chunks, err := notes.Index(context.Background(), "/notes/empty.md", "   \n ", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, chunks)
}

func TestNotesSearchFilter(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"alpha", "beta"}}
	notes := newTestNotes(t, embedder)
	ctx := context.Background()

	_, err := notes.Index(ctx, "/notes/a.md", "alpha here", nil)
	require.NoError(t, err)
	_, err = notes.Index(ctx, "/notes/b.md", "alpha there", nil)
	require.NoError(t, err)

	hits, err := notes.Search(ctx, "alpha", 5, map[string]string{"file_path": "/notes/b.md"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/notes/b.md", hits[0].FilePath)
}

func TestNotesIndexDirectory(t *testing.T) {
	embedder := &vocabEmbedder{vocab: []string{"alpha", "beta"}}
	notes := newTestNotes(t, embedder)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("alpha note"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("beta note"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("not markdown"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.md"), []byte("alpha beta"), 0644))

	chunks, err := notes.IndexDirectory(ctx, dir, []string{".md"})
	require.NoError(t, err)
	assert.Equal(t, 3, chunks)

	stats, err := notes.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
}
