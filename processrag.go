package processrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/processrag/core/extraction"
	"github.com/siherrmann/processrag/core/llm"
	"github.com/siherrmann/processrag/core/pipeline"
	"github.com/siherrmann/processrag/core/retrieval"
	"github.com/siherrmann/processrag/database"
	"github.com/siherrmann/processrag/database/local"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	"golang.org/x/sync/errgroup"
)

const previewLength = 100

var _ database.VectorIndex = (*local.Index)(nil)

// Rag provides a unified interface to ingestion, retrieval and answering
type Rag struct {
	Config    *helper.Configuration
	Index     database.VectorIndex
	Pipeline  *pipeline.Pipeline
	Retriever *retrieval.Retriever
	Extractor *extraction.Pipeline
	provider  llm.Provider
	// Logging
	log *slog.Logger
}

// Prepared is the retrieval state shared by the answer and the sources branch of a query
type Prepared struct {
	Question string
	History  []model.Message
	Chunks   []*model.Chunk
	Context  string
	Sources  []model.SourceCitation
}

// NewRag creates a Rag with the index, embedder and chat provider selected by config.
// The configuration is validated first so a missing credential fails before any work starts.
// A nil logger logs to stderr so the report on stdout stays clean.
func NewRag(ctx context.Context, config *helper.Configuration, logger *slog.Logger) (*Rag, error) {
	if config == nil {
		return nil, helper.NewError("configuration validation", fmt.Errorf("configuration is nil"))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = defaultLogger(config)
	}

	embed, err := pipeline.NewEmbedder(ctx, config)
	if err != nil {
		return nil, helper.NewError("create embedder", err)
	}

	index, err := OpenIndex(config, logger)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, config, logger)
	if err != nil {
		index.Close()
		return nil, helper.NewError("create provider", err)
	}

	return New(config, index, embed, provider, logger), nil
}

// New creates a Rag from already constructed components
func New(config *helper.Configuration, index database.VectorIndex, embed pipeline.EmbedFunc, provider llm.Provider, logger *slog.Logger) *Rag {
	return &Rag{
		Config:    config,
		Index:     index,
		Pipeline:  pipeline.NewPipeline(nil, pipeline.DefaultChunker(), embed),
		Retriever: retrieval.NewRetriever(index, embed, logger),
		Extractor: extraction.NewPipeline(provider, logger),
		provider:  provider,
		log:       logger,
	}
}

// OpenIndex opens the vector index of the configured backend
func OpenIndex(config *helper.Configuration, logger *slog.Logger) (database.VectorIndex, error) {
	switch config.IndexBackend {
	case helper.BackendPostgres:
		db, err := helper.NewDatabase("processrag", &config.Database, logger)
		if err != nil {
			return nil, helper.NewError("connect database", err)
		}
		index, err := database.NewPostgresIndex(db, config.EmbeddingDim, false)
		if err != nil {
			db.Close()
			return nil, helper.NewError("open postgres index", err)
		}
		return index, nil
	case helper.BackendLocal, "":
		index, err := local.Open(config.PersistDir, config.EmbeddingDim, logger)
		if err != nil {
			return nil, helper.NewError("open local index", err)
		}
		return index, nil
	default:
		return nil, helper.NewError("open index", fmt.Errorf("unsupported index backend %q", config.IndexBackend))
	}
}

// Close closes the chat provider and the index
func (r *Rag) Close() error {
	if r.provider != nil {
		if err := r.provider.Close(); err != nil {
			r.log.Warn("Failed to close provider", "error", err)
		}
	}
	if r.Index != nil {
		return r.Index.Close()
	}
	return nil
}

// BuildOrLoad ingests the file at path unless the index already holds chunks.
// It returns the number of chunks in the index.
func (r *Rag) BuildOrLoad(ctx context.Context, path string) (int, error) {
	count, err := r.Index.CountChunks(ctx)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	if count > 0 {
		r.log.Info("Loading existing index", "chunks", count)
		return count, nil
	}

	r.log.Info("Creating new index", "source", path)

	inserted, err := r.Ingest(ctx, path)
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Ingest loads, chunks and embeds the file at path and stores it in the index.
// It returns the number of inserted chunks.
func (r *Rag) Ingest(ctx context.Context, path string) (int, error) {
	doc, err := model.NewDocumentFromFile(path, model.Metadata{"file_type": strings.TrimPrefix(filepath.Ext(path), ".")})
	if err != nil {
		return 0, helper.NewError("read document", err)
	}

	pages, err := r.Pipeline.Load(path)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, helper.NewError("load document", fmt.Errorf("%s: %w", path, helper.ErrEmptyFile))
	}

	median := len(pages) / 2
	r.log.Info("Loaded document", "title", doc.Title, "pages", len(pages), "median_page", median, "preview", preview(pages[median].Content))
	if total, ok := pages[0].Metadata.Int("total_pages"); ok && total > len(pages) {
		r.log.Debug("Skipped pages without text", "total_pages", total, "skipped", total-len(pages))
	}

	chunks, err := r.Pipeline.Process(ctx, pages)
	if err != nil {
		return 0, helper.NewError("process document", err)
	}

	doc.Metadata["pages"] = len(pages)
	if err := r.Index.AddDocument(ctx, doc, chunks); err != nil {
		return 0, helper.NewError("store document", err)
	}

	r.log.Info("Ingested document", "title", doc.Title, "chunks", len(chunks))

	return len(chunks), nil
}

// ChangeIndexType rebuilds the vector index of the postgres backend as indexType (hnsw or ivfflat)
func (r *Rag) ChangeIndexType(ctx context.Context, indexType string) error {
	index, ok := r.Index.(*database.PostgresIndex)
	if !ok {
		return helper.NewError("change index type", fmt.Errorf("index type %q requires the %s backend", indexType, helper.BackendPostgres))
	}
	return index.ChangeIndexType(ctx, database.IndexType(indexType), database.IndexParams{})
}

// Prepare retrieves the relevant chunks for question once and derives the prompt context
// and the citations from them.
func (r *Rag) Prepare(ctx context.Context, question string, history []model.Message) (*Prepared, error) {
	chunks, err := r.Retriever.Retrieve(ctx, question, r.Config.TopK, r.Config.RelevanceThreshold)
	if err != nil {
		return nil, helper.NewError("retrieve", err)
	}

	if len(chunks) == 0 {
		r.log.Warn("No sufficiently relevant chunks found", "threshold", r.Config.RelevanceThreshold)
	}

	return &Prepared{
		Question: question,
		History:  history,
		Chunks:   chunks,
		Context:  retrieval.FormatContext(chunks),
		Sources:  retrieval.UniqueSources(chunks),
	}, nil
}

// Ask answers question and returns the answer with the sources it was based on.
// The answer branch and the sources branch run concurrently on the same prepared retrieval.
func (r *Rag) Ask(ctx context.Context, question string, history []model.Message) (*model.PipelineResult, error) {
	prepared, err := r.Prepare(ctx, question, history)
	if err != nil {
		return nil, err
	}

	var answer model.Answer
	var sources []model.SourceCitation

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := r.answer(gCtx, prepared)
		if err != nil {
			return err
		}
		answer = *result
		return nil
	})
	g.Go(func() error {
		sources = prepared.Sources
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Assemble(answer, sources), nil
}

func (r *Rag) answer(ctx context.Context, prepared *Prepared) (*model.Answer, error) {
	if r.Config.AnswerMode == helper.AnswerModeText {
		text, err := r.Extractor.AnswerText(ctx, prepared.Question, prepared.Context, prepared.History)
		if err != nil {
			return nil, err
		}
		return &model.Answer{Text: text}, nil
	}

	lld, gpm, err := r.Extractor.Run(ctx, prepared.Question, prepared.Context, prepared.History)
	if err != nil {
		return nil, err
	}
	return &model.Answer{Extraction: lld, Classes: gpm}, nil
}

func defaultLogger(config *helper.Configuration) *slog.Logger {
	return helper.NewLogger(os.Stderr, config.SlogLevel())
}

func preview(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > previewLength {
		return string(runes[:previewLength])
	}
	return string(runes)
}
