package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/siherrmann/processrag/core/pipeline"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

// Index is the part of a vector index the retriever needs
type Index interface {
	SimilaritySearchWithScores(ctx context.Context, embedding []float32, k int) ([]*model.ScoredChunk, error)
}

// Retriever returns the chunks relevant to a query
type Retriever struct {
	index  Index
	embed  pipeline.EmbedFunc
	logger *slog.Logger
}

// NewRetriever creates a retriever embedding queries with embed
func NewRetriever(index Index, embed pipeline.EmbedFunc, logger *slog.Logger) *Retriever {
	return &Retriever{
		index:  index,
		embed:  embed,
		logger: logger,
	}
}

// Retrieve requests the topK nearest chunks for query and keeps those scoring at least
// threshold, most relevant first. No relevant chunk is not an error: the result is empty.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]*model.Chunk, error) {
	config := &model.QueryConfig{TopK: topK, SimilarityThreshold: threshold}
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate query", err)
	}

	embedding, err := r.embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	scored, err := r.index.SimilaritySearchWithScores(ctx, embedding, config.TopK)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	chunks := FilterByScore(scored, config.SimilarityThreshold)

	r.logger.Debug("Retrieved chunks", "requested", config.TopK, "candidates", len(scored), "relevant", len(chunks), "threshold", config.SimilarityThreshold)

	return chunks, nil
}

// FilterByScore drops entries without a score or scoring below threshold and returns the
// remaining chunks by descending score. Entries with equal scores keep their input order.
func FilterByScore(scored []*model.ScoredChunk, threshold float64) []*model.Chunk {
	kept := make([]*model.ScoredChunk, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Chunk == nil || s.Score == nil {
			continue
		}
		if *s.Score >= threshold {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return *kept[i].Score > *kept[j].Score
	})

	chunks := make([]*model.Chunk, len(kept))
	for i, s := range kept {
		chunks[i] = s.Chunk
	}
	return chunks
}
