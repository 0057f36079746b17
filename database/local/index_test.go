package local

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/siherrmann/processrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 4

func openTestIndex(t *testing.T, dir string) *Index {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	index, err := Open(dir, testDim, logger)
	require.NoError(t, err, "Expected Open to not return an error")
	return index
}

func axis(i int) []float32 {
	v := make([]float32, testDim)
	v[i] = 1
	return v
}

func TestOpen(t *testing.T) {
	t.Run("Open creates directory", func(t *testing.T) {
		index := openTestIndex(t, t.TempDir()+"/nested/index_db")
		defer index.Close()

		count, err := index.CountChunks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Open rejects non positive dimension", func(t *testing.T) {
		_, err := Open(t.TempDir(), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
		assert.Error(t, err)
	})
}

func TestAddDocument(t *testing.T) {
	ctx := context.Background()
	index := openTestIndex(t, t.TempDir())
	defer index.Close()

	doc := &model.Document{Title: "manual", Source: "manual.pdf"}
	chunks := []*model.Chunk{
		{Content: "page one", Source: "manual.pdf", Page: 0, Embedding: axis(0), Metadata: model.Metadata{"row_index": 0}},
		{Content: "page two", Source: "manual.pdf", Page: 1, Embedding: axis(1)},
	}

	t.Run("Assigns identity to document and chunks", func(t *testing.T) {
		err := index.AddDocument(ctx, doc, chunks)
		require.NoError(t, err)

		assert.Equal(t, int64(1), doc.ID)
		assert.False(t, doc.CreatedAt.IsZero())
		for i, c := range chunks {
			assert.Equal(t, int64(i+1), c.ID)
			assert.Equal(t, doc.RID, c.DocumentRID)
		}

		count, err := index.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Rejects embeddings with wrong dimension", func(t *testing.T) {
		err := index.AddDocument(ctx, &model.Document{Title: "bad"}, []*model.Chunk{{Content: "x", Embedding: []float32{1}}})
		assert.Error(t, err)

		count, err := index.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count, "Nothing is stored for an invalid document")
	})

	t.Run("Lists stored documents", func(t *testing.T) {
		documents, err := index.Documents(ctx)
		require.NoError(t, err)
		require.Len(t, documents, 1)
		assert.Equal(t, "manual.pdf", documents[0].Source)
	})
}

func TestSimilaritySearchWithScores(t *testing.T) {
	ctx := context.Background()
	index := openTestIndex(t, t.TempDir())
	defer index.Close()

	halfway := []float32{1, 1, 0, 0}
	err := index.AddDocument(ctx, &model.Document{Title: "sheet", Source: "targets.xlsx"}, []*model.Chunk{
		{Content: "a", Source: "targets.xlsx", Page: 1, Embedding: axis(0)},
		{Content: "b", Source: "targets.xlsx", Page: 2, Embedding: halfway},
		{Content: "c", Source: "targets.xlsx", Page: 3, Embedding: []float32{-1, 0, 0, 0}},
		{Content: "zero", Source: "targets.xlsx", Page: 4, Embedding: make([]float32, testDim)},
	})
	require.NoError(t, err)

	t.Run("Results are ordered by descending score", func(t *testing.T) {
		results, err := index.SimilaritySearchWithScores(ctx, axis(0), 4)
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Equal(t, "a", results[0].Chunk.Content)
		assert.InDelta(t, 1.0, *results[0].Score, 1e-6)
		assert.Equal(t, "b", results[1].Chunk.Content)
		assert.InDelta(t, 0.7071, *results[1].Score, 1e-3)
		assert.Equal(t, "c", results[2].Chunk.Content)
		assert.Equal(t, 0.0, *results[2].Score, "Opposite vectors are clamped to zero")
		assert.Nil(t, results[3].Score, "Zero vectors have no score")
	})

	t.Run("k limits the result", func(t *testing.T) {
		results, err := index.SimilaritySearchWithScores(ctx, axis(0), 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Non positive k returns nothing", func(t *testing.T) {
		results, err := index.SimilaritySearchWithScores(ctx, axis(0), 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Query with wrong dimension", func(t *testing.T) {
		_, err := index.SimilaritySearchWithScores(ctx, []float32{1}, 2)
		assert.Error(t, err)
	})
}

func TestReopenKeepsChunks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	index := openTestIndex(t, dir)
	err := index.AddDocument(ctx, &model.Document{Title: "notes", Source: "notes.md"}, []*model.Chunk{
		{Content: "persisted", Source: "notes.md", Page: model.UnknownPage, Embedding: axis(2), Metadata: model.Metadata{"row_index": 7}},
	})
	require.NoError(t, err)
	require.NoError(t, index.Close())

	reopened := openTestIndex(t, dir)
	defer reopened.Close()

	count, err := reopened.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := reopened.SimilaritySearchWithScores(ctx, axis(2), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].Chunk.Content)
	assert.Equal(t, model.UnknownPage, results[0].Chunk.Page)

	row, ok := results[0].Chunk.Metadata.Int("row_index")
	assert.True(t, ok)
	assert.Equal(t, 7, row)
}
