package pipeline

import (
	"context"
	"fmt"
	"maps"

	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

// Page is one loaded unit of a source file: a PDF page, a spreadsheet row or a whole text file.
type Page struct {
	Content  string
	Source   string
	Page     int // model.UnknownPage if the format has no pages
	Metadata model.Metadata
}

// LoadFunc reads a file into pages
type LoadFunc func(path string) ([]Page, error)

// ChunkFunc splits the text of a page into chunks
type ChunkFunc func(text string) ([]ChunkWithOffset, error)

// EmbedFunc generates the embedding for a text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// ChunkWithOffset is a chunk of page text with its character offset in the page
type ChunkWithOffset struct {
	Content  string
	StartPos *int
}

// Pipeline loads, chunks and embeds documents
type Pipeline struct {
	Loader   LoadFunc
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline.
// A nil loader selects the loader by file extension.
func NewPipeline(loader LoadFunc, chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Loader:   loader,
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Load reads path into pages
func (p *Pipeline) Load(path string) ([]Page, error) {
	loader := p.Loader
	if loader == nil {
		var err error
		loader, err = LoaderForPath(path)
		if err != nil {
			return nil, err
		}
	}

	pages, err := loader(path)
	if err != nil {
		return nil, helper.NewError("load "+path, err)
	}
	return pages, nil
}

// Process chunks and embeds pages. Every chunk keeps the source and page of its page,
// the page metadata and its start offset as "start_index". Chunk indexes run across all pages.
func (p *Pipeline) Process(ctx context.Context, pages []Page) ([]*model.Chunk, error) {
	if p.Chunker == nil || p.Embedder == nil {
		return nil, helper.NewError("process pages", fmt.Errorf("chunker and embedder are required"))
	}

	var chunks []*model.Chunk
	for _, page := range pages {
		pieces, err := p.Chunker(page.Content)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("chunk %s page %d", page.Source, page.Page), err)
		}

		for _, piece := range pieces {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			embedding, err := p.Embedder(ctx, piece.Content)
			if err != nil {
				return nil, helper.NewError(fmt.Sprintf("embed chunk %d", len(chunks)), err)
			}

			metadata := model.Metadata{}
			maps.Copy(metadata, page.Metadata)
			if piece.StartPos != nil {
				metadata["start_index"] = *piece.StartPos
			}

			chunkIndex := len(chunks)
			chunks = append(chunks, &model.Chunk{
				Content:    piece.Content,
				Source:     page.Source,
				Page:       page.Page,
				Embedding:  embedding,
				StartPos:   piece.StartPos,
				ChunkIndex: &chunkIndex,
				Metadata:   metadata,
			})
		}
	}

	return chunks, nil
}
