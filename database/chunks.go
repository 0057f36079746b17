package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	loadSql "github.com/siherrmann/processrag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	SelectChunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error)
	SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.ScoredChunk, error)
	CountChunks(ctx context.Context) (int, error)
	DeleteChunksByDocument(ctx context.Context, documentRID uuid.UUID) (int, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewChunksDBHandler creates a new chunks database handler.
// The documents table has to exist already since chunks reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", "embedding_dim", embeddingDim)

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with its vector index if it does not exist yet.
func (h *ChunksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a chunk. chunk.DocumentID has to reference an existing document.
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	var embedding interface{}
	if len(chunk.Embedding) > 0 {
		if len(chunk.Embedding) != h.embeddingDim {
			return helper.NewError("embedding validation", fmt.Errorf("expected %d dimensions, got %d", h.embeddingDim, len(chunk.Embedding)))
		}
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8)`,
		chunk.DocumentID,
		chunk.Content,
		chunk.Source,
		chunk.Page,
		embedding,
		chunk.StartPos,
		chunk.ChunkIndex,
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by RID. The embedding is not loaded.
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk($1)`,
		rid,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByDocument retrieves all chunks of a document ordered by chunk index
func (h *ChunksDBHandler) SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity returns the limit nearest chunks by cosine distance with their
// relevance score (1 - distance, clamped to [0, 1]), most similar first.
// If documentRIDs is nil or empty, searches across all documents.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.ScoredChunk, error) {
	embeddingVector := pgvector.NewVector(embedding)

	var documentRIDsParam interface{}
	if len(documentRIDs) > 0 {
		documentRIDsParam = pq.Array(documentRIDs)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		documentRIDsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.ScoredChunk
	for rows.Next() {
		chunk := &model.Chunk{}
		var score float64
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.Content,
			&chunk.Source,
			&chunk.Page,
			&chunk.StartPos,
			&chunk.ChunkIndex,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&score,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, &model.ScoredChunk{Chunk: chunk, Score: &score})
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// CountChunks returns the number of stored chunks
func (h *ChunksDBHandler) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteChunksByDocument deletes all chunks of a document and returns how many were removed
func (h *ChunksDBHandler) DeleteChunksByDocument(ctx context.Context, documentRID uuid.UUID) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_chunks_by_document($1)`,
		documentRID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

func scanChunk(row rowScanner, chunk *model.Chunk) error {
	return row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.DocumentID,
		&chunk.DocumentRID,
		&chunk.Content,
		&chunk.Source,
		&chunk.Page,
		&chunk.StartPos,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
}
