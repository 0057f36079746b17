package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	"github.com/timshannon/badgerhold/v4"
)

// Index is an on-disk vector index stored in a badger directory.
// Similarity search scans all chunks, which is fine for single-document indexes.
type Index struct {
	store  *badgerhold.Store
	dir    string
	dim    int
	logger *slog.Logger
}

// Open opens or creates the index in dir. Embeddings must have dim dimensions.
func Open(dir string, dim int, logger *slog.Logger) (*Index, error) {
	if dim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", dim))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, helper.NewError("create index directory", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil
	options.Encoder = json.Marshal
	options.Decoder = json.Unmarshal

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, helper.NewError("open badger store", err)
	}

	logger.Debug("Opened local index", "dir", dir, "dim", dim)

	return &Index{
		store:  store,
		dir:    dir,
		dim:    dim,
		logger: logger,
	}, nil
}

// AddDocument stores doc and its chunks. IDs, RIDs and timestamps are assigned here.
func (x *Index) AddDocument(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	for i, chunk := range chunks {
		if len(chunk.Embedding) != x.dim {
			return helper.NewError(fmt.Sprintf("validate chunk %d", i), fmt.Errorf("expected %d dimensions, got %d", x.dim, len(chunk.Embedding)))
		}
	}

	documentCount, err := x.store.Count(&model.Document{}, nil)
	if err != nil {
		return helper.NewError("count documents", err)
	}
	chunkCount, err := x.store.Count(&model.Chunk{}, nil)
	if err != nil {
		return helper.NewError("count chunks", err)
	}

	now := time.Now()
	if doc.RID == uuid.Nil {
		doc.RID = uuid.New()
	}
	doc.ID = int64(documentCount) + 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := x.store.Upsert(doc.RID.String(), doc); err != nil {
		return helper.NewError("save document", err)
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk.ID = int64(chunkCount) + int64(i) + 1
		chunk.RID = uuid.New()
		chunk.DocumentID = doc.ID
		chunk.DocumentRID = doc.RID
		chunk.CreatedAt = now

		if err := x.store.Upsert(chunk.RID.String(), chunk); err != nil {
			return helper.NewError(fmt.Sprintf("save chunk %d", i), err)
		}
	}

	x.logger.Info("Stored document", "rid", doc.RID, "source", doc.Source, "chunks", len(chunks))

	return nil
}

// CountChunks returns the number of stored chunks
func (x *Index) CountChunks(ctx context.Context) (int, error) {
	count, err := x.store.Count(&model.Chunk{}, nil)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return int(count), nil
}

// Documents returns all stored documents ordered by ID
func (x *Index) Documents(ctx context.Context) ([]*model.Document, error) {
	var documents []model.Document
	if err := x.store.Find(&documents, nil); err != nil {
		return nil, helper.NewError("find documents", err)
	}

	result := make([]*model.Document, len(documents))
	for i := range documents {
		result[i] = &documents[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SimilaritySearchWithScores returns the k chunks nearest to embedding by cosine distance.
// The score is 1 - distance clamped to [0, 1]. Chunks with a zero vector get no score.
func (x *Index) SimilaritySearchWithScores(ctx context.Context, embedding []float32, k int) ([]*model.ScoredChunk, error) {
	if len(embedding) != x.dim {
		return nil, helper.NewError("validate query", fmt.Errorf("expected %d dimensions, got %d", x.dim, len(embedding)))
	}
	if k <= 0 {
		return []*model.ScoredChunk{}, nil
	}

	var chunks []model.Chunk
	if err := x.store.Find(&chunks, nil); err != nil {
		return nil, helper.NewError("find chunks", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*model.ScoredChunk, 0, len(chunks))
	for i := range chunks {
		scored := &model.ScoredChunk{Chunk: &chunks[i]}
		if similarity, ok := cosineSimilarity(embedding, chunks[i].Embedding); ok {
			score := math.Max(0, math.Min(1, similarity))
			scored.Score = &score
		}
		results = append(results, scored)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return scoreOf(results[i]) > scoreOf(results[j])
	})
	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// Close closes the badger store, closing twice is a no-op
func (x *Index) Close() error {
	if x.store == nil {
		return nil
	}
	err := x.store.Close()
	x.store = nil
	return err
}

func scoreOf(s *model.ScoredChunk) float64 {
	if s.Score == nil {
		return math.Inf(-1)
	}
	return *s.Score
}

func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
