package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/processrag/helper"
)

// IndexType is the pgvector index kind used for the chunk embeddings
type IndexType string

const (
	IndexTypeHNSW    IndexType = "hnsw"
	IndexTypeIVFFlat IndexType = "ivfflat"
)

// IndexParams tunes the vector index. Zero values fall back to the pgvector defaults
// (hnsw: m 16, ef_construction 64; ivfflat: lists 100).
type IndexParams struct {
	M              int
	EfConstruction int
	Lists          int
}

// ChangeIndexType drops the chunk embedding index and rebuilds it as indexType.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType IndexType, params IndexParams) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var createIndexSQL string
	switch indexType {
	case IndexTypeHNSW:
		m := params.M
		if m <= 0 {
			m = 16
		}
		efConstruction := params.EfConstruction
		if efConstruction <= 0 {
			efConstruction = 64
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case IndexTypeIVFFlat:
		lists := params.Lists
		if lists <= 0 {
			lists = 100
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Changed vector index", "type", indexType, "m", params.M, "ef_construction", params.EfConstruction, "lists", params.Lists)

	return nil
}
