package model

import (
	"time"

	"github.com/google/uuid"
)

// UnknownPage marks a chunk whose page or row is not known
const UnknownPage = -1

// Chunk is a unit of source content as stored in the vector index
type Chunk struct {
	ID          int64     `json:"id"`
	RID         uuid.UUID `json:"rid"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	Page        int       `json:"page"` // page for PDFs, row index for spreadsheets
	Embedding   []float32 `json:"embedding,omitempty"`
	StartPos    *int      `json:"start_pos,omitempty"`
	ChunkIndex  *int      `json:"chunk_index,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScoredChunk is a chunk returned by a similarity search.
// Score is nil when the index could not compute one.
type ScoredChunk struct {
	Chunk *Chunk   `json:"chunk"`
	Score *float64 `json:"score,omitempty"`
}
