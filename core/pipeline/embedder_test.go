package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/siherrmann/processrag/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func TestDefaultEmbedder(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
	}

	ctx := context.Background()
	embedder, err := DefaultEmbedder()
	require.NoError(t, err)

	t.Run("Generate embedding for text", func(t *testing.T) {
		embedding, err := embedder(ctx, "The conveyor belt was cleaned before the morning shift.")
		require.NoError(t, err)
		assert.Len(t, embedding, 384, "all-MiniLM-L6-v2 produces 384-dimensional embeddings")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		embedding1, err := embedder(ctx, "Deterministic embedding test")
		require.NoError(t, err)
		embedding2, err := embedder(ctx, "Deterministic embedding test")
		require.NoError(t, err)

		for i := range embedding1 {
			assert.InDelta(t, embedding1[i], embedding2[i], 0.0001)
		}
	})

	t.Run("Similar texts have similar embeddings", func(t *testing.T) {
		dog, err := embedder(ctx, "The dog is happy")
		require.NoError(t, err)
		puppy, err := embedder(ctx, "The puppy is joyful")
		require.NoError(t, err)
		physics, err := embedder(ctx, "Quantum physics is complex")
		require.NoError(t, err)

		assert.Greater(t, cosine(dog, puppy), cosine(dog, physics))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := embedder(cancelled, "text")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewEmbedder(t *testing.T) {
	t.Run("Unsupported embedder", func(t *testing.T) {
		_, err := NewEmbedder(context.Background(), &helper.Configuration{Embedder: "word2vec"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported embedder")
	})

	t.Run("Gemini embedder without key", func(t *testing.T) {
		_, err := NewEmbedder(context.Background(), &helper.Configuration{Embedder: helper.EmbedderGemini, EmbeddingDim: 384})
		assert.ErrorIs(t, err, helper.ErrMissingCredential)
	})

	t.Run("Gemini embedder with key", func(t *testing.T) {
		embedder, err := GeminiEmbedder(context.Background(), "test-key", "", 768)
		require.NoError(t, err, "Creating the client does not call the API")
		assert.NotNil(t, embedder)
	})
}
