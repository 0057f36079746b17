package database

import (
	"context"
	"fmt"

	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	loadSql "github.com/siherrmann/processrag/sql"
)

// VectorIndex is a persistent store of embedded chunks that can be searched by similarity.
// It is implemented by PostgresIndex and by the on-disk index in database/local.
type VectorIndex interface {
	AddDocument(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error
	CountChunks(ctx context.Context) (int, error)
	SimilaritySearchWithScores(ctx context.Context, embedding []float32, k int) ([]*model.ScoredChunk, error)
	Close() error
}

// PostgresIndex is a VectorIndex backed by pgvector
type PostgresIndex struct {
	db        *helper.Database
	Documents *DocumentsDBHandler
	Chunks    *ChunksDBHandler
}

var _ VectorIndex = (*PostgresIndex)(nil)

// NewPostgresIndex initializes the extensions, functions and tables on db.
func NewPostgresIndex(db *helper.Database, embeddingDim int, force bool) (*PostgresIndex, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("init extensions", err)
	}

	documents, err := NewDocumentsDBHandler(db, force)
	if err != nil {
		return nil, err
	}

	chunks, err := NewChunksDBHandler(db, embeddingDim, force)
	if err != nil {
		return nil, err
	}

	return &PostgresIndex{
		db:        db,
		Documents: documents,
		Chunks:    chunks,
	}, nil
}

// AddDocument inserts doc and then its chunks, linking each chunk to the document.
func (p *PostgresIndex) AddDocument(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	err := p.Documents.InsertDocument(ctx, doc)
	if err != nil {
		return helper.NewError("insert document", err)
	}

	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		err := p.Chunks.InsertChunk(ctx, chunk)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	p.db.Logger.Info("Stored document", "rid", doc.RID, "source", doc.Source, "chunks", len(chunks))

	return nil
}

// CountChunks returns the number of stored chunks
func (p *PostgresIndex) CountChunks(ctx context.Context) (int, error) {
	return p.Chunks.CountChunks(ctx)
}

// SimilaritySearchWithScores returns the k chunks nearest to embedding with their relevance score
func (p *PostgresIndex) SimilaritySearchWithScores(ctx context.Context, embedding []float32, k int) ([]*model.ScoredChunk, error) {
	return p.Chunks.SelectChunksBySimilarity(ctx, embedding, k, nil)
}

// ChangeIndexType rebuilds the chunk embedding index as indexType
func (p *PostgresIndex) ChangeIndexType(ctx context.Context, indexType IndexType, params IndexParams) error {
	return p.Chunks.ChangeIndexType(ctx, indexType, params)
}

// Close closes the underlying database connection
func (p *PostgresIndex) Close() error {
	return p.db.Close()
}
